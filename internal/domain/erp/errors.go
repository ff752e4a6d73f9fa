package erp

import "errors"

// ErrUnavailable indicates the ERP endpoint could not be reached or
// answered with a server error. Document absence is not an error.
var ErrUnavailable = errors.New("erp unavailable")
