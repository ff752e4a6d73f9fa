package incidents

import (
	"time"
)

// ID tipe untuk Incident
type IncidentID string

// Type enum untuk jenis insiden
type Type string

const (
	TypePricingIssue            Type = "PRICING_ISSUE"
	TypeDuplicateInvoice        Type = "DUPLICATE_INVOICE"
	TypeDeliveryBillingMismatch Type = "DELIVERY_BILLING_MISMATCH"
	TypeOther                   Type = "OTHER"
)

// KnownTypes is the closed set of incident types accepted on intake.
var KnownTypes = map[Type]bool{
	TypePricingIssue:            true,
	TypeDuplicateInvoice:        true,
	TypeDeliveryBillingMismatch: true,
	TypeOther:                   true,
}

// Status enum
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusResolved      Status = "RESOLVED"
	StatusUnderReview   Status = "UNDER_REVIEW"
	StatusAnalysisError Status = "ANALYSIS_ERROR"
)

// Aggregate Root: Incident
//
// Result fields (Summary..AnalyzedAt) are written only by the analysis
// service, always as one atomic update; a rerun fully overwrites them.
type Incident struct {
	ID           IncidentID `json:"id"`
	ERPReference string     `json:"erp_reference"`
	Type         Type       `json:"incident_type"`
	Description  string     `json:"description"`
	Status       Status     `json:"status"`

	Summary         string     `json:"summary,omitempty"`
	Details         string     `json:"details,omitempty"`
	Conclusion      string     `json:"conclusion,omitempty"`
	ConfidenceScore *float64   `json:"confidence_score,omitempty"`
	AnalysisSource  string     `json:"analysis_source,omitempty"`
	AnalyzedAt      *time.Time `json:"analyzed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
