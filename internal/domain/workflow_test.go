package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role Role
		want bool
	}{
		{RoleLecturer, true},
		{RoleCoordinator, true},
		{RoleManager, true},
		{RoleHR, true},
		{Role("Admin"), false},
		{Role("hr"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			if got := tt.role.IsValid(); got != tt.want {
				t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestNextStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		from   ClaimStatus
		tr     Transition
		role   Role
		want   ClaimStatus
		wantOK bool
	}{
		{"coordinator forwards submitted", ClaimStatusSubmitted, TransitionForward, RoleCoordinator, ClaimStatusForwarded, true},
		{"coordinator rejects submitted", ClaimStatusSubmitted, TransitionReject, RoleCoordinator, ClaimStatusRejected, true},
		{"manager approves forwarded", ClaimStatusForwarded, TransitionApprove, RoleManager, ClaimStatusApproved, true},
		{"manager rejects forwarded", ClaimStatusForwarded, TransitionReject, RoleManager, ClaimStatusRejected, true},
		{"manager approves submitted", ClaimStatusSubmitted, TransitionApprove, RoleManager, "", false},
		{"coordinator rejects forwarded", ClaimStatusForwarded, TransitionReject, RoleCoordinator, "", false},
		{"manager forwards", ClaimStatusSubmitted, TransitionForward, RoleManager, "", false},
		{"hr approves", ClaimStatusForwarded, TransitionApprove, RoleHR, "", false},
		{"approve twice", ClaimStatusApproved, TransitionApprove, RoleManager, "", false},
		{"reject rejected", ClaimStatusRejected, TransitionReject, RoleManager, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NextStatus(tt.from, tt.tr, tt.role)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextStatus(%s, %s, %s) = (%q, %v), want (%q, %v)",
					tt.from, tt.tr, tt.role, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReviewEdges_NeverLeaveTerminal(t *testing.T) {
	t.Parallel()

	for _, e := range ReviewEdges() {
		if e.From.IsTerminal() {
			t.Errorf("edge %+v leaves terminal status", e)
		}
		if !e.To.IsValid() {
			t.Errorf("edge %+v targets unknown status", e)
		}
	}
}

func TestSourceStatus(t *testing.T) {
	t.Parallel()

	from, ok := SourceStatus(TransitionReject, RoleManager)
	if !ok || from != ClaimStatusForwarded {
		t.Errorf("manager reject source = (%q, %v), want FORWARDED", from, ok)
	}
	if _, ok := SourceStatus(TransitionApprove, RoleCoordinator); ok {
		t.Error("coordinator approve should not be in the table")
	}
}

func TestIsDeletable(t *testing.T) {
	t.Parallel()

	want := map[ClaimStatus]bool{
		ClaimStatusSubmitted: false,
		ClaimStatusForwarded: false,
		ClaimStatusApproved:  true,
		ClaimStatusRejected:  true,
	}
	for status, deletable := range want {
		if got := IsDeletable(status); got != deletable {
			t.Errorf("IsDeletable(%s) = %v, want %v", status, got, deletable)
		}
	}
}

func TestFeedbackMessage_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tr   Transition
		role Role
		msg  string
		want string
	}{
		{TransitionForward, RoleCoordinator, "", "Forwarded to manager for final approval"},
		{TransitionReject, RoleCoordinator, "   ", "Rejected by coordinator"},
		{TransitionApprove, RoleManager, "\n\t", "Approved by manager"},
		{TransitionReject, RoleManager, "", "Rejected by manager"},
		{TransitionReject, RoleManager, "  hours do not match timetable ", "hours do not match timetable"},
	}
	for _, tt := range tests {
		if got := FeedbackMessage(tt.tr, tt.role, tt.msg); got != tt.want {
			t.Errorf("FeedbackMessage(%s, %s, %q) = %q, want %q", tt.tr, tt.role, tt.msg, got, tt.want)
		}
	}
}

func TestClaim_Amount(t *testing.T) {
	t.Parallel()

	c := Claim{HoursWorked: 10, HourlyRate: decimal.NewFromInt(250)}
	if !c.Amount().Equal(decimal.NewFromInt(2500)) {
		t.Errorf("Amount() = %s, want 2500", c.Amount())
	}

	c.HourlyRate = decimal.RequireFromString("187.50")
	c.HoursWorked = 3
	if !c.Amount().Equal(decimal.RequireFromString("562.5")) {
		t.Errorf("Amount() = %s, want 562.5", c.Amount())
	}
}

func TestActor_OwnsLecturer(t *testing.T) {
	t.Parallel()

	id := int64(4)
	lecturer := Actor{UserID: 1, Role: RoleLecturer, LecturerID: &id}
	hr := Actor{UserID: 2, Role: RoleHR, LecturerID: &id}

	if !lecturer.OwnsLecturer(4) {
		t.Error("lecturer should own its own profile")
	}
	if lecturer.OwnsLecturer(5) {
		t.Error("lecturer should not own another profile")
	}
	if hr.OwnsLecturer(4) {
		t.Error("ownership is a lecturer-only relation")
	}
}
