// Package policy decides which operations each role may invoke.
// No role inherits another role's grants.
package policy

import (
	"fmt"

	"github.com/heartmarshall/claims-backend/internal/domain"
)

var grants = map[domain.Role]map[domain.Operation]struct{}{
	domain.RoleLecturer: set(
		domain.OpSubmitClaim,
		domain.OpViewOwnClaims,
		domain.OpDeleteOwnClaim,
		domain.OpQuoteAmount,
		domain.OpViewDocument,
	),
	domain.RoleCoordinator: set(
		domain.OpViewSubmittedQueue,
		domain.OpForwardClaim,
		domain.OpRejectSubmitted,
		domain.OpViewDocument,
	),
	domain.RoleManager: set(
		domain.OpViewForwardedQueue,
		domain.OpApproveClaim,
		domain.OpRejectForwarded,
		domain.OpViewDocument,
	),
	domain.RoleHR: set(
		domain.OpViewApprovedQueue,
		domain.OpIssueInvoice,
		domain.OpMarkInvoicePaid,
		domain.OpDeleteInvoice,
		domain.OpViewInvoices,
		domain.OpManageUsers,
		domain.OpViewAnyClaims,
		domain.OpViewDashboard,
		domain.OpViewDocument,
	),
}

func set(ops ...domain.Operation) map[domain.Operation]struct{} {
	m := make(map[domain.Operation]struct{}, len(ops))
	for _, op := range ops {
		m[op] = struct{}{}
	}
	return m
}

// Allowed reports whether role may perform op. Unknown roles are always denied.
func Allowed(role domain.Role, op domain.Operation) bool {
	if !role.IsValid() {
		return false
	}
	_, ok := grants[role][op]
	return ok
}

// Authorize returns an error wrapping domain.ErrUnauthorized when the actor
// may not perform op. An actor with no identity is always refused.
func Authorize(actor domain.Actor, op domain.Operation) error {
	if actor.UserID == 0 || !Allowed(actor.Role, op) {
		return fmt.Errorf("%s as %q: %w", op, actor.Role, domain.ErrUnauthorized)
	}
	return nil
}

// RejectOperation maps the reviewer role to the reject grant it needs.
func RejectOperation(role domain.Role) domain.Operation {
	if role == domain.RoleManager {
		return domain.OpRejectForwarded
	}
	return domain.OpRejectSubmitted
}

// Operations returns the operations granted to role, for diagnostics.
func Operations(role domain.Role) []domain.Operation {
	out := make([]domain.Operation, 0, len(grants[role]))
	for op := range grants[role] {
		out = append(out, op)
	}
	return out
}
