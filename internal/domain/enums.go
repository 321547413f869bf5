package domain

// Role is the closed set of actor roles. Unknown values never pass IsValid,
// so they are denied by every policy check.
type Role string

const (
	RoleLecturer    Role = "LECTURER"
	RoleCoordinator Role = "COORDINATOR"
	RoleManager     Role = "MANAGER"
	RoleHR          Role = "HR"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleLecturer, RoleCoordinator, RoleManager, RoleHR:
		return true
	}
	return false
}

// ClaimStatus is the workflow state of a claim.
type ClaimStatus string

const (
	ClaimStatusSubmitted ClaimStatus = "SUBMITTED"
	ClaimStatusForwarded ClaimStatus = "FORWARDED"
	ClaimStatusApproved  ClaimStatus = "APPROVED"
	ClaimStatusRejected  ClaimStatus = "REJECTED"
)

func (s ClaimStatus) String() string { return string(s) }

func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusForwarded, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further review transition leaves this status.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// Transition names an edge of the claim state machine.
type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionForward Transition = "forward"
	TransitionReject  Transition = "reject"
	TransitionApprove Transition = "approve"
	TransitionDelete  Transition = "delete"
	TransitionInvoice Transition = "invoice"
)

func (t Transition) String() string { return string(t) }

// Operation is anything an actor can ask the core to do, including reads.
type Operation string

const (
	OpSubmitClaim        Operation = "submit_claim"
	OpViewOwnClaims      Operation = "view_own_claims"
	OpDeleteOwnClaim     Operation = "delete_own_claim"
	OpQuoteAmount        Operation = "quote_amount"
	OpViewSubmittedQueue Operation = "view_submitted_queue"
	OpForwardClaim       Operation = "forward_claim"
	OpRejectSubmitted    Operation = "reject_submitted"
	OpViewForwardedQueue Operation = "view_forwarded_queue"
	OpApproveClaim       Operation = "approve_claim"
	OpRejectForwarded    Operation = "reject_forwarded"
	OpViewApprovedQueue  Operation = "view_approved_queue"
	OpIssueInvoice       Operation = "issue_invoice"
	OpMarkInvoicePaid    Operation = "mark_invoice_paid"
	OpDeleteInvoice      Operation = "delete_invoice"
	OpViewInvoices       Operation = "view_invoices"
	OpManageUsers        Operation = "manage_users"
	OpViewAnyClaims      Operation = "view_any_claims"
	OpViewDashboard      Operation = "view_dashboard"
	OpViewDocument       Operation = "view_document"
)

func (o Operation) String() string { return string(o) }
