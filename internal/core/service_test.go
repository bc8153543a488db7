package core

import (
	"fmt"
	"testing"
)

func TestAuditFailureIsSwallowed(t *testing.T) {
	svc, deps := newTestService()
	deps.store.auditErr = fmt.Errorf("disk full")

	// The primary operation succeeds even though the audit write fails.
	if _, err := svc.CreateSchedule(deps.reporter, deps.employee.ID, biweeklyMonday()); err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	if len(deps.store.audits) != 0 {
		t.Errorf("audits = %d, want 0", len(deps.store.audits))
	}
}

func TestMailFailureIsSwallowed(t *testing.T) {
	svc, deps := newTestService()
	deps.mailer.err = fmt.Errorf("smtp down")

	meeting, err := svc.CreateMeeting(deps.reporter, CreateMeetingInput{
		EmployeeID: deps.employee.ID,
		MeetingAt:  testNow.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}
	if meeting.ID == "" {
		t.Error("meeting should be created despite mail failure")
	}
}

func TestNilMailerIsTolerated(t *testing.T) {
	svc, deps := newTestService()
	svc.mailer = nil

	if _, err := svc.CreateMeeting(deps.reporter, CreateMeetingInput{
		EmployeeID: deps.employee.ID,
		MeetingAt:  testNow.AddDate(0, 0, 1),
	}); err != nil {
		t.Fatalf("CreateMeeting() without mailer error = %v", err)
	}
}

func TestUserByEmail(t *testing.T) {
	svc, deps := newTestService()

	user, err := svc.UserByEmail(deps.employee.Email)
	if err != nil {
		t.Fatalf("UserByEmail() error = %v", err)
	}
	if user.ID != deps.employee.ID {
		t.Errorf("UserByEmail() = %s, want %s", user.ID, deps.employee.ID)
	}

	if _, err := svc.UserByEmail("ghost@example.com"); err == nil {
		t.Error("UserByEmail() for an unknown address should fail")
	}
}
