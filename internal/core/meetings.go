package core

import (
	"fmt"
	"io"
	"time"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

// CreateMeetingInput carries the fields for an ad hoc meeting.
type CreateMeetingInput struct {
	EmployeeID string     `json:"employee_id"`
	MeetingAt  time.Time  `json:"meeting_at"`
	Status     string     `json:"status,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// UpdateMeetingInput carries mutable meeting fields. Nil pointers leave the
// stored value unchanged.
type UpdateMeetingInput struct {
	Status       *string `json:"status,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	FormResponse *string `json:"form_response,omitempty"`
}

// CreateMeeting creates an ad hoc meeting between the acting reporter and
// an employee.
func (s *Service) CreateMeeting(actor *User, in CreateMeetingInput) (*Meeting, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee is required", ErrValidation)
	}
	if in.MeetingAt.IsZero() {
		return nil, fmt.Errorf("%w: meeting time is required", ErrValidation)
	}

	status := in.Status
	if status == "" {
		status = MeetingScheduled
	}
	if status != MeetingScheduled && status != MeetingProposed {
		return nil, fmt.Errorf("%w: new meetings must be SCHEDULED or PROPOSED", ErrValidation)
	}

	if _, err := s.store.GetUser(in.EmployeeID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	meeting := &Meeting{
		ID:         storage.GenerateID(),
		EmployeeID: in.EmployeeID,
		ReporterID: actor.ID,
		MeetingAt:  in.MeetingAt,
		Status:     status,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.SaveMeeting(meetingToRecord(meeting)); err != nil {
		return nil, fmt.Errorf("failed to save meeting: %w", err)
	}

	s.audit(actor.ID, "meeting.create", "meeting", meeting.ID, status)
	s.notifyMeetingScheduled(meeting)

	return meeting, nil
}

// GetMeeting retrieves a meeting the actor is allowed to see.
func (s *Service) GetMeeting(actor *User, id string) (*Meeting, error) {
	record, err := s.store.GetMeeting(id)
	if err != nil {
		return nil, err
	}

	meeting := meetingFromRecord(record)
	if !canSeeMeeting(actor, meeting) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	return meeting, nil
}

// ListMeetings lists meetings visible to the actor. Employees see only
// their own, reporters their reports', super admins everything.
func (s *Service) ListMeetings(actor *User, f storage.MeetingFilter) ([]*Meeting, error) {
	switch actor.Role {
	case RoleEmployee:
		f.EmployeeID = actor.ID
		f.ReporterID = ""
	case RoleReporter:
		f.ReporterID = actor.ID
	case RoleSuperAdmin:
		// unrestricted
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}

	records, err := s.store.ListMeetings(f)
	if err != nil {
		return nil, err
	}

	meetings := make([]*Meeting, len(records))
	for i, r := range records {
		meetings[i] = meetingFromRecord(r)
	}

	return meetings, nil
}

// UpdateMeeting applies a form submission, notes edit or status transition.
func (s *Service) UpdateMeeting(actor *User, id string, in UpdateMeetingInput) (*Meeting, error) {
	record, err := s.store.GetMeeting(id)
	if err != nil {
		return nil, err
	}

	meeting := meetingFromRecord(record)
	if !canSeeMeeting(actor, meeting) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	formSubmitted := false
	if in.Status != nil {
		switch *in.Status {
		case MeetingScheduled, MeetingProposed, MeetingCompleted, MeetingCancelled:
			record.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: unknown meeting status %q", ErrValidation, *in.Status)
		}
	}
	if in.Notes != nil {
		record.Notes = *in.Notes
	}
	if in.FormResponse != nil {
		record.FormResponse = *in.FormResponse
		formSubmitted = true
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.store.SaveMeeting(record); err != nil {
		return nil, fmt.Errorf("failed to save meeting: %w", err)
	}

	s.audit(actor.ID, "meeting.update", "meeting", id, record.Status)

	updated := meetingFromRecord(record)
	if formSubmitted {
		recipients := s.participantEmails(updated)
		if len(recipients) > 0 {
			s.sendMail(recipients, "One-on-one form submitted",
				"<p>The preparation form for your one-on-one has been submitted.</p>")
		}
	}

	return updated, nil
}

// AddAttachment stores a file against a meeting.
func (s *Service) AddAttachment(actor *User, meetingID, fileName string, r io.Reader) (*Attachment, error) {
	record, err := s.store.GetMeeting(meetingID)
	if err != nil {
		return nil, err
	}
	if !canSeeMeeting(actor, meetingFromRecord(record)) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrValidation)
	}

	path, size, err := s.blob.Save(fileName, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	attachment := &storage.AttachmentRecord{
		ID:           storage.GenerateID(),
		MeetingID:    meetingID,
		FileName:     fileName,
		BlobPath:     path,
		SizeBytes:    size,
		UploadedByID: actor.ID,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.SaveAttachment(attachment); err != nil {
		s.blob.Delete(path)
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	s.audit(actor.ID, "attachment.create", "attachment", attachment.ID, fileName)
	return attachmentFromRecord(attachment), nil
}

// ListAttachments lists a meeting's attachments.
func (s *Service) ListAttachments(actor *User, meetingID string) ([]*Attachment, error) {
	record, err := s.store.GetMeeting(meetingID)
	if err != nil {
		return nil, err
	}
	if !canSeeMeeting(actor, meetingFromRecord(record)) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	records, err := s.store.ListAttachments(meetingID)
	if err != nil {
		return nil, err
	}

	attachments := make([]*Attachment, len(records))
	for i, r := range records {
		attachments[i] = attachmentFromRecord(r)
	}

	return attachments, nil
}

func canSeeMeeting(actor *User, m *Meeting) bool {
	if actor == nil {
		return false
	}
	return actor.Role == RoleSuperAdmin || actor.ID == m.EmployeeID || actor.ID == m.ReporterID
}
