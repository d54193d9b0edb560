package types

import "testing"

func TestIsValidSubjectKind(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		expected bool
	}{
		{"creator is valid", "creator", true},
		{"admin is valid", "admin", true},
		{"uppercase CREATOR is invalid", "CREATOR", false},
		{"empty string is invalid", "", false},
		{"user is invalid", "user", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSubjectKind(tt.kind)
			if result != tt.expected {
				t.Errorf("IsValidSubjectKind(%q) = %v, want %v", tt.kind, result, tt.expected)
			}
		})
	}
}

func TestIsValidSeverity(t *testing.T) {
	tests := []struct {
		name     string
		severity string
		expected bool
	}{
		{"success is valid", "success", true},
		{"info is valid", "info", true},
		{"warning is valid", "warning", true},
		{"error is valid", "error", true},
		{"critical is invalid", "critical", false},
		{"empty string is invalid", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidSeverity(tt.severity)
			if result != tt.expected {
				t.Errorf("IsValidSeverity(%q) = %v, want %v", tt.severity, result, tt.expected)
			}
		})
	}
}

func TestIsKnownEventKind(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		expected bool
	}{
		{"proposal_approved is known", "proposal_approved", true},
		{"proposal_submitted is known", "proposal_submitted", true},
		{"ai_insights_ready is known", "ai_insights_ready", true},
		{"subscription_cancelled is known", "subscription_cancelled", true},
		{"elite_inquiry_received is known", "elite_inquiry_received", true},
		{"system_alert is known", "system_alert", true},
		{"connected is known", "connected", true},
		{"revenue_milestone is known", "revenue_milestone", true},
		{"unclassified is not a wire kind", "unclassified", false},
		{"unknown kind", "totally_new_event", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsKnownEventKind(tt.kind)
			if result != tt.expected {
				t.Errorf("IsKnownEventKind(%q) = %v, want %v", tt.kind, result, tt.expected)
			}
		})
	}
}
