package core

import (
	"fmt"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

// CreateSchedule creates an active recurring schedule for an employee and
// computes its first meeting time.
//
// Uniqueness of "one active schedule per employee" is enforced at the
// presentation layer via AvailableEmployees, not by a storage constraint;
// two concurrent creations can still produce duplicates.
func (s *Service) CreateSchedule(actor *User, employeeID string, rule Rule) (*Schedule, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee is required", ErrValidation)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUser(employeeID); err != nil {
		return nil, err
	}

	now := s.now()
	next := NextOccurrence(now, rule)

	schedule := &Schedule{
		ID:            storage.GenerateID(),
		EmployeeID:    employeeID,
		ReporterID:    actor.ID,
		Rule:          rule,
		IsActive:      true,
		NextMeetingAt: &next,
		CreatedAt:     now.UTC(),
	}

	if err := s.store.SaveSchedule(scheduleToRecord(schedule, false)); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	s.audit(actor.ID, "schedule.create", "schedule", schedule.ID, rule.Frequency)
	return schedule, nil
}

// ListSchedules lists non-deleted schedules: a reporter sees their own, a
// super admin sees all.
func (s *Service) ListSchedules(actor *User) ([]*Schedule, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}

	reporterID := actor.ID
	if actor.Role == RoleSuperAdmin {
		reporterID = ""
	}

	records, err := s.store.ListSchedules(reporterID)
	if err != nil {
		return nil, err
	}

	schedules := make([]*Schedule, len(records))
	for i, r := range records {
		schedules[i] = scheduleFromRecord(r)
	}

	return schedules, nil
}

// AvailableEmployees lists employees the reporter can still create a
// schedule for, filtering out anyone who already has an active one with
// this reporter.
func (s *Service) AvailableEmployees(actor *User) ([]*User, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}

	records, err := s.store.ListAvailableEmployees(actor.ID, RoleEmployee)
	if err != nil {
		return nil, err
	}

	users := make([]*User, len(records))
	for i, r := range records {
		users[i] = userFromRecord(r)
	}

	return users, nil
}

// EditSchedule updates the rule shape. Already-materialized meetings keep
// their original times; only future materializations use the new shape.
func (s *Service) EditSchedule(actor *User, id string, rule Rule) (*Schedule, error) {
	record, err := s.ownedSchedule(actor, id)
	if err != nil {
		return nil, err
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	record.Frequency = rule.Frequency
	record.DayOfWeek = rule.DayOfWeek
	record.TimeOfDay = rule.TimeOfDay

	next := NextOccurrence(s.now(), rule)
	record.NextMeetingAt = &next

	if err := s.store.SaveSchedule(record); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	s.audit(actor.ID, "schedule.edit", "schedule", id, rule.Frequency)
	return scheduleFromRecord(record), nil
}

// PauseSchedule deactivates a schedule. With cancelFuture set, every
// SCHEDULED meeting of this schedule in the future is cancelled; past and
// completed meetings are untouched. The count is reported so the UI can
// show "N meetings were cancelled."
func (s *Service) PauseSchedule(actor *User, id string, cancelFuture bool) (*ScheduleResult, error) {
	record, err := s.ownedSchedule(actor, id)
	if err != nil {
		return nil, err
	}

	record.IsActive = false
	if err := s.store.SaveSchedule(record); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	cancelled := 0
	if cancelFuture {
		cancelled, err = s.store.CancelFutureMeetings(id, s.now(), MeetingScheduled, MeetingCancelled)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel future meetings: %w", err)
		}
	}

	s.audit(actor.ID, "schedule.pause", "schedule", id, fmt.Sprintf("cancelled=%d", cancelled))
	return &ScheduleResult{
		Schedule:              scheduleFromRecord(record),
		CancelledMeetingCount: cancelled,
	}, nil
}

// ResumeSchedule reactivates a paused schedule.
//
// nextMeetingAt is NOT recomputed here, so a long pause leaves a stale
// next-meeting time in the past; the next materialization run picks it up
// immediately. TODO: recompute on resume once product confirms the
// immediate-catch-up behavior is not relied on.
func (s *Service) ResumeSchedule(actor *User, id string) (*Schedule, error) {
	record, err := s.ownedSchedule(actor, id)
	if err != nil {
		return nil, err
	}

	record.IsActive = true
	if err := s.store.SaveSchedule(record); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	s.audit(actor.ID, "schedule.resume", "schedule", id, "")
	return scheduleFromRecord(record), nil
}

// DeleteSchedule soft-deletes a schedule and cancels its future SCHEDULED
// meetings. Past meetings remain queryable for history.
func (s *Service) DeleteSchedule(actor *User, id string) (*ScheduleResult, error) {
	record, err := s.ownedSchedule(actor, id)
	if err != nil {
		return nil, err
	}

	record.Deleted = true
	record.IsActive = false
	if err := s.store.SaveSchedule(record); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	cancelled, err := s.store.CancelFutureMeetings(id, s.now(), MeetingScheduled, MeetingCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel future meetings: %w", err)
	}

	s.audit(actor.ID, "schedule.delete", "schedule", id, fmt.Sprintf("cancelled=%d", cancelled))
	return &ScheduleResult{CancelledMeetingCount: cancelled}, nil
}

// MaterializeDue creates meetings for every active schedule whose next
// meeting time has passed, advancing each schedule by its frequency. It is
// triggered by the periodic external job (the `materialize` command) and
// returns the number of meetings created.
func (s *Service) MaterializeDue() (int, error) {
	now := s.now()

	due, err := s.store.ListDueSchedules(now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due schedules: %w", err)
	}

	created := 0
	for _, record := range due {
		if err := s.materialize(record); err != nil {
			return created, fmt.Errorf("schedule %s: %w", record.ID, err)
		}
		created++
	}

	return created, nil
}

// materialize creates one meeting at the schedule's next meeting time, then
// advances nextMeetingAt strictly forward by the frequency interval.
func (s *Service) materialize(record *storage.ScheduleRecord) error {
	if record.NextMeetingAt == nil {
		return fmt.Errorf("schedule has no next meeting time")
	}
	meetingAt := *record.NextMeetingAt

	now := s.now().UTC()
	meeting := &Meeting{
		ID:         storage.GenerateID(),
		EmployeeID: record.EmployeeID,
		ReporterID: record.ReporterID,
		ScheduleID: record.ID,
		MeetingAt:  meetingAt,
		Status:     MeetingScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.SaveMeeting(meetingToRecord(meeting)); err != nil {
		return fmt.Errorf("failed to save meeting: %w", err)
	}

	next := Advance(meetingAt, record.Frequency)
	record.NextMeetingAt = &next
	if err := s.store.SaveSchedule(record); err != nil {
		return fmt.Errorf("failed to advance schedule: %w", err)
	}

	s.notifyMeetingScheduled(meeting)
	return nil
}

// ownedSchedule loads a live schedule and checks the actor may mutate it.
func (s *Service) ownedSchedule(actor *User, id string) (*storage.ScheduleRecord, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}

	record, err := s.store.GetSchedule(id)
	if err != nil {
		return nil, err
	}
	if record.Deleted {
		return nil, fmt.Errorf("schedule: %w", ErrNotFound)
	}
	if actor.Role != RoleSuperAdmin && record.ReporterID != actor.ID {
		return nil, fmt.Errorf("%w: schedule belongs to another reporter", ErrForbidden)
	}

	return record, nil
}

func (s *Service) notifyMeetingScheduled(m *Meeting) {
	recipients := s.participantEmails(m)
	if len(recipients) == 0 {
		return
	}
	subject := "One-on-one scheduled"
	body := fmt.Sprintf("<p>A one-on-one meeting has been scheduled for %s.</p>",
		m.MeetingAt.Format("Mon, 02 Jan 2006 15:04"))
	s.sendMail(recipients, subject, body)
}

func (s *Service) participantEmails(m *Meeting) []string {
	var recipients []string
	for _, id := range []string{m.EmployeeID, m.ReporterID} {
		if u, err := s.store.GetUser(id); err == nil {
			recipients = append(recipients, u.Email)
		}
	}
	return recipients
}
