package domain

import "strings"

// Edge is one row of the claim review state machine.
type Edge struct {
	From       ClaimStatus
	Transition Transition
	Role       Role
	To         ClaimStatus
}

// reviewEdges lists every legal review transition. Submit and delete are not
// status-to-status edges and are handled by the lifecycle engine directly.
var reviewEdges = []Edge{
	{From: ClaimStatusSubmitted, Transition: TransitionForward, Role: RoleCoordinator, To: ClaimStatusForwarded},
	{From: ClaimStatusSubmitted, Transition: TransitionReject, Role: RoleCoordinator, To: ClaimStatusRejected},
	{From: ClaimStatusForwarded, Transition: TransitionApprove, Role: RoleManager, To: ClaimStatusApproved},
	{From: ClaimStatusForwarded, Transition: TransitionReject, Role: RoleManager, To: ClaimStatusRejected},
}

// ReviewEdges returns a copy of the review transition table.
func ReviewEdges() []Edge {
	out := make([]Edge, len(reviewEdges))
	copy(out, reviewEdges)
	return out
}

// SourceStatus returns the only status from which role may perform t.
// ok is false when the pair does not appear in the table at all.
func SourceStatus(t Transition, role Role) (ClaimStatus, bool) {
	for _, e := range reviewEdges {
		if e.Transition == t && e.Role == role {
			return e.From, true
		}
	}
	return "", false
}

// NextStatus looks up the target of (from, t, role).
func NextStatus(from ClaimStatus, t Transition, role Role) (ClaimStatus, bool) {
	for _, e := range reviewEdges {
		if e.From == from && e.Transition == t && e.Role == role {
			return e.To, true
		}
	}
	return "", false
}

// IsDeletable reports whether the owning lecturer may remove a claim in this status.
func IsDeletable(s ClaimStatus) bool {
	return s == ClaimStatusRejected || s == ClaimStatusApproved
}

// DefaultFeedbackMessage is the boilerplate recorded when a reviewer leaves no message.
func DefaultFeedbackMessage(t Transition, role Role) string {
	switch {
	case t == TransitionForward && role == RoleCoordinator:
		return "Forwarded to manager for final approval"
	case t == TransitionReject && role == RoleCoordinator:
		return "Rejected by coordinator"
	case t == TransitionApprove && role == RoleManager:
		return "Approved by manager"
	case t == TransitionReject && role == RoleManager:
		return "Rejected by manager"
	}
	return ""
}

// FeedbackMessage returns msg trimmed, or the default for (t, role) if msg is blank.
func FeedbackMessage(t Transition, role Role, msg string) string {
	if trimmed := strings.TrimSpace(msg); trimmed != "" {
		return trimmed
	}
	return DefaultFeedbackMessage(t, role)
}
