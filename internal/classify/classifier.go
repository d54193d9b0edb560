package classify

import (
	"creatorhub-realtime/internal/types"
)

// Fields holds the display-ready presentation fields derived from an event kind.
type Fields struct {
	Kind     types.EventKind
	Icon     string
	Title    string
	Severity types.Severity
}

// fallback is the presentation for kinds that do not resolve to a table entry.
// An unrecognized event is always still surfaced, just without a specialized
// presentation.
var fallback = Fields{
	Kind:     types.EventUnclassified,
	Icon:     "🔔",
	Title:    "Notification",
	Severity: types.SeverityInfo,
}

// table is the static presentation lookup keyed by event kind.
var table = map[types.EventKind]Fields{
	types.EventProposalSubmitted: {
		Icon:     "📤",
		Title:    "Proposal Submitted",
		Severity: types.SeverityInfo,
	},
	types.EventProposalApproved: {
		Icon:     "🎉",
		Title:    "Proposal Approved",
		Severity: types.SeveritySuccess,
	},
	types.EventProposalRejected: {
		Icon:     "❌",
		Title:    "Proposal Rejected",
		Severity: types.SeverityError,
	},
	types.EventProposalUnderReview: {
		Icon:     "🔍",
		Title:    "Proposal Under Review",
		Severity: types.SeverityInfo,
	},
	types.EventAIInsightsReady: {
		Icon:     "🤖",
		Title:    "AI Insights Ready",
		Severity: types.SeverityInfo,
	},
	types.EventAIMemoryUpdated: {
		Icon:     "🧠",
		Title:    "AI Memory Updated",
		Severity: types.SeverityInfo,
	},
	types.EventAIPatternDetected: {
		Icon:     "📊",
		Title:    "New Pattern Detected",
		Severity: types.SeverityInfo,
	},
	types.EventSubscriptionCreated: {
		Icon:     "⭐",
		Title:    "New Subscriber",
		Severity: types.SeveritySuccess,
	},
	types.EventSubscriptionUpgraded: {
		Icon:     "🚀",
		Title:    "Subscription Upgraded",
		Severity: types.SeveritySuccess,
	},
	types.EventSubscriptionCancelled: {
		Icon:     "💔",
		Title:    "Subscription Cancelled",
		Severity: types.SeverityWarning,
	},
	types.EventEliteInquiryReceived: {
		Icon:     "💎",
		Title:    "Elite Inquiry Received",
		Severity: types.SeverityInfo,
	},
	types.EventEliteInquiryUpdated: {
		Icon:     "💎",
		Title:    "Elite Inquiry Updated",
		Severity: types.SeverityInfo,
	},
	types.EventSystemAlert: {
		Icon:     "⚠️",
		Title:    "System Alert",
		Severity: types.SeverityWarning,
	},
	types.EventConnected: {
		Icon:     "🔔",
		Title:    "Connected",
		Severity: types.SeverityInfo,
	},
	types.EventRevenueMilestone: {
		Icon:     "💰",
		Title:    "Revenue Milestone",
		Severity: types.SeveritySuccess,
	},
}

// Classify maps a raw event kind to its presentation fields. Unknown kinds
// map to the generic fallback entry; Classify never fails.
func Classify(kind string) Fields {
	entry, ok := table[types.EventKind(kind)]
	if !ok {
		return fallback
	}
	entry.Kind = types.EventKind(kind)
	return entry
}
