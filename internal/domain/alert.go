package domain

import (
	"fmt"
	"strings"
	"time"
)

// AlertType categorizes a detected risk.
type AlertType string

const (
	AlertTypePaymentOverdue  AlertType = "payment-overdue"
	AlertTypeVendorBreach    AlertType = "vendor-breach"
	AlertTypeIPInfringement  AlertType = "ip-infringement"
	AlertTypeDeadline        AlertType = "deadline"
	AlertTypePolicyViolation AlertType = "policy-violation"
	AlertTypeOther           AlertType = "other"
)

// AlertSeverity grades how urgent a detected risk is.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert is one structured risk finding produced by a monitoring sweep.
// Alerts are only ever created from validated sweep output, never
// speculatively.
type Alert struct {
	ID           string
	AgentID      string
	Type         AlertType
	Title        string
	Description  string
	Severity     AlertSeverity
	Acknowledged bool
	Metadata     map[string]string
	CreatedAt    time.Time
}

// AlertCandidate is the loosely-typed shape a sweep's model output is decoded
// into before validation. A candidate missing required fields or using an
// unrecognized enum value is rejected individually; it never fails the batch.
type AlertCandidate struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// ToAlert validates a candidate and converts it into an Alert.
// Underscore-separated enum values, which models emit despite prompting,
// are normalized to the canonical hyphenated forms first.
func (c AlertCandidate) ToAlert(id, agentID string, createdAt time.Time) (*Alert, error) {
	if c.Title == "" || c.Description == "" || c.Type == "" || c.Severity == "" {
		return nil, fmt.Errorf("alert candidate is missing required fields")
	}

	alertType := AlertType(normalizeEnum(c.Type))
	if !isValidAlertType(alertType) {
		return nil, fmt.Errorf("alert candidate has unrecognized type: %s", c.Type)
	}

	severity := AlertSeverity(normalizeEnum(c.Severity))
	if !isValidAlertSeverity(severity) {
		return nil, fmt.Errorf("alert candidate has unrecognized severity: %s", c.Severity)
	}

	return &Alert{
		ID:           id,
		AgentID:      agentID,
		Type:         alertType,
		Title:        c.Title,
		Description:  c.Description,
		Severity:     severity,
		Acknowledged: false,
		Metadata:     map[string]string{},
		CreatedAt:    createdAt,
	}, nil
}

// ValidateAlert validates an Alert instance
func ValidateAlert(a *Alert) error {
	if a == nil {
		return fmt.Errorf("alert cannot be nil")
	}

	if a.ID == "" {
		return fmt.Errorf("alert ID is required")
	}

	if a.AgentID == "" {
		return fmt.Errorf("alert AgentID is required")
	}

	if a.Title == "" {
		return fmt.Errorf("alert Title is required")
	}

	if a.Description == "" {
		return fmt.Errorf("alert Description is required")
	}

	if !isValidAlertType(a.Type) {
		return fmt.Errorf("alert Type is invalid: %s", a.Type)
	}

	if !isValidAlertSeverity(a.Severity) {
		return fmt.Errorf("alert Severity is invalid: %s", a.Severity)
	}

	return nil
}

func normalizeEnum(v string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "_", "-")
}

// isValidAlertType checks if an AlertType is valid
func isValidAlertType(t AlertType) bool {
	switch t {
	case AlertTypePaymentOverdue, AlertTypeVendorBreach, AlertTypeIPInfringement,
		AlertTypeDeadline, AlertTypePolicyViolation, AlertTypeOther:
		return true
	}
	return false
}

// isValidAlertSeverity checks if an AlertSeverity is valid
func isValidAlertSeverity(s AlertSeverity) bool {
	switch s {
	case AlertSeverityLow, AlertSeverityMedium, AlertSeverityHigh, AlertSeverityCritical:
		return true
	}
	return false
}
