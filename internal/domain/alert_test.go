package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		typeVal  AlertType
		expected string
	}{
		{"PaymentOverdue", AlertTypePaymentOverdue, "payment-overdue"},
		{"VendorBreach", AlertTypeVendorBreach, "vendor-breach"},
		{"IPInfringement", AlertTypeIPInfringement, "ip-infringement"},
		{"Deadline", AlertTypeDeadline, "deadline"},
		{"PolicyViolation", AlertTypePolicyViolation, "policy-violation"},
		{"Other", AlertTypeOther, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.typeVal))
		})
	}
}

func TestAlertCandidateToAlert(t *testing.T) {
	now := time.Now()

	t.Run("valid candidate", func(t *testing.T) {
		c := AlertCandidate{
			Type:        "payment-overdue",
			Title:       "Invoice #4521 unpaid",
			Description: "Invoice #4521 was due 2024-01-01 and remains unpaid.",
			Severity:    "high",
		}
		alert, err := c.ToAlert("al1", "a1", now)
		require.NoError(t, err)
		assert.Equal(t, "al1", alert.ID)
		assert.Equal(t, "a1", alert.AgentID)
		assert.Equal(t, AlertTypePaymentOverdue, alert.Type)
		assert.Equal(t, AlertSeverityHigh, alert.Severity)
		assert.False(t, alert.Acknowledged)
		assert.Equal(t, now, alert.CreatedAt)
	})

	t.Run("underscore enums are normalized", func(t *testing.T) {
		c := AlertCandidate{
			Type:        "vendor_breach",
			Title:       "SLA missed",
			Description: "Vendor missed the uptime commitment two months running.",
			Severity:    "Medium",
		}
		alert, err := c.ToAlert("al1", "a1", now)
		require.NoError(t, err)
		assert.Equal(t, AlertTypeVendorBreach, alert.Type)
		assert.Equal(t, AlertSeverityMedium, alert.Severity)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		c := AlertCandidate{Type: "deadline", Severity: "low"}
		_, err := c.ToAlert("al1", "a1", now)
		assert.Error(t, err)
	})

	t.Run("unrecognized type rejected", func(t *testing.T) {
		c := AlertCandidate{Type: "weather", Title: "t", Description: "d", Severity: "low"}
		_, err := c.ToAlert("al1", "a1", now)
		assert.Error(t, err)
	})

	t.Run("unrecognized severity rejected", func(t *testing.T) {
		c := AlertCandidate{Type: "other", Title: "t", Description: "d", Severity: "catastrophic"}
		_, err := c.ToAlert("al1", "a1", now)
		assert.Error(t, err)
	})
}

func TestValidateAlert(t *testing.T) {
	now := time.Now()
	valid := func() *Alert {
		return &Alert{
			ID:          "al1",
			AgentID:     "a1",
			Type:        AlertTypeDeadline,
			Title:       "Filing deadline",
			Description: "Trademark renewal due in 30 days.",
			Severity:    AlertSeverityMedium,
			Metadata:    map[string]string{},
			CreatedAt:   now,
		}
	}

	t.Run("valid alert", func(t *testing.T) {
		require.NoError(t, ValidateAlert(valid()))
	})

	t.Run("nil alert", func(t *testing.T) {
		assert.Error(t, ValidateAlert(nil))
	})

	t.Run("missing title", func(t *testing.T) {
		a := valid()
		a.Title = ""
		assert.Error(t, ValidateAlert(a))
	})

	t.Run("invalid severity", func(t *testing.T) {
		a := valid()
		a.Severity = AlertSeverity("mild")
		assert.Error(t, ValidateAlert(a))
	})
}
