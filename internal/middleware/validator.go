package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var referencePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-/]*$`)

// ValidateReference checks that an ERP reference looks like an ERPNext
// document name and carries no control/injection characters.
func ValidateReference(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("erp_reference cannot be empty")
	}
	if len(ref) > 140 {
		return fmt.Errorf("erp_reference too long (max 140 characters)")
	}
	if !referencePattern.MatchString(ref) {
		return fmt.Errorf("erp_reference contains invalid characters")
	}
	return nil
}

// ValidateIncidentType checks if the incident type is in the allowed list
func ValidateIncidentType(t string) error {
	allowed := map[string]bool{
		"PRICING_ISSUE":             true,
		"DUPLICATE_INVOICE":         true,
		"DELIVERY_BILLING_MISMATCH": true,
		"OTHER":                     true,
	}
	if !allowed[t] {
		return fmt.Errorf("invalid incident_type: %s (allowed: PRICING_ISSUE, DUPLICATE_INVOICE, DELIVERY_BILLING_MISMATCH, OTHER)", t)
	}
	return nil
}

// ValidateDescription bounds free-text input
func ValidateDescription(desc string) error {
	if len(desc) > 4000 {
		return fmt.Errorf("description too long (max 4000 characters)")
	}
	return nil
}
