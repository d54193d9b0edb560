package types

// SubjectKind identifies the kind of identity a notification stream is scoped to
type SubjectKind string

const (
	SubjectKindCreator SubjectKind = "creator" // Creator-facing dashboard identity
	SubjectKindAdmin   SubjectKind = "admin"   // Admin analytics dashboard identity
)

// Severity represents the semantic severity of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// EventKind is the wire-level tag of an inbound realtime event
type EventKind string

const (
	// Proposal lifecycle
	EventProposalSubmitted   EventKind = "proposal_submitted"
	EventProposalApproved    EventKind = "proposal_approved"
	EventProposalRejected    EventKind = "proposal_rejected"
	EventProposalUnderReview EventKind = "proposal_under_review"

	// AI insight lifecycle
	EventAIInsightsReady   EventKind = "ai_insights_ready"
	EventAIMemoryUpdated   EventKind = "ai_memory_updated"
	EventAIPatternDetected EventKind = "ai_pattern_detected"

	// Subscription lifecycle
	EventSubscriptionCreated   EventKind = "subscription_created"
	EventSubscriptionUpgraded  EventKind = "subscription_upgraded"
	EventSubscriptionCancelled EventKind = "subscription_cancelled"

	// Elite-tier inquiries
	EventEliteInquiryReceived EventKind = "elite_inquiry_received"
	EventEliteInquiryUpdated  EventKind = "elite_inquiry_updated"

	// Platform events
	EventSystemAlert      EventKind = "system_alert"
	EventConnected        EventKind = "connected"
	EventRevenueMilestone EventKind = "revenue_milestone"

	// EventUnclassified is the explicit fallback variant for kinds that do
	// not resolve to a known classifier entry. Such events are never dropped.
	EventUnclassified EventKind = "unclassified"
)

// IsValidSubjectKind checks if the given kind is a valid SubjectKind
func IsValidSubjectKind(kind string) bool {
	switch SubjectKind(kind) {
	case SubjectKindCreator, SubjectKindAdmin:
		return true
	default:
		return false
	}
}

// IsValidSeverity checks if the given severity is a valid Severity
func IsValidSeverity(severity string) bool {
	switch Severity(severity) {
	case SeveritySuccess, SeverityInfo, SeverityWarning, SeverityError:
		return true
	default:
		return false
	}
}

// IsKnownEventKind checks if the given kind resolves to a known classifier entry
func IsKnownEventKind(kind string) bool {
	switch EventKind(kind) {
	case EventProposalSubmitted, EventProposalApproved, EventProposalRejected, EventProposalUnderReview,
		EventAIInsightsReady, EventAIMemoryUpdated, EventAIPatternDetected,
		EventSubscriptionCreated, EventSubscriptionUpgraded, EventSubscriptionCancelled,
		EventEliteInquiryReceived, EventEliteInquiryUpdated,
		EventSystemAlert, EventConnected, EventRevenueMilestone:
		return true
	default:
		return false
	}
}
