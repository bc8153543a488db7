package core

import (
	"fmt"
	"time"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

// CreateTodoInput carries the fields for a new todo.
type CreateTodoInput struct {
	Title        string     `json:"title"`
	AssignedToID string     `json:"assigned_to_id"`
	MeetingID    string     `json:"meeting_id,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// UpdateTodoInput carries mutable todo fields. Nil pointers leave the stored
// value unchanged.
type UpdateTodoInput struct {
	Title    *string    `json:"title,omitempty"`
	Status   *string    `json:"status,omitempty"`
	Priority *string    `json:"priority,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`
}

// CreateTodo creates a todo assigned to a user, optionally linked to a
// meeting. New todos always start in NOT_STARTED.
func (s *Service) CreateTodo(actor *User, in CreateTodoInput) (*Todo, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: authentication required", ErrForbidden)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.AssignedToID == "" {
		in.AssignedToID = actor.ID
	}
	if _, err := s.store.GetUser(in.AssignedToID); err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	if in.MeetingID != "" {
		record, err := s.store.GetMeeting(in.MeetingID)
		if err != nil {
			return nil, err
		}
		if !canSeeMeeting(actor, meetingFromRecord(record)) {
			return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
		}
	}

	now := s.now().UTC()
	todo := &Todo{
		ID:           storage.GenerateID(),
		Title:        in.Title,
		AssignedToID: in.AssignedToID,
		CreatedByID:  actor.ID,
		MeetingID:    in.MeetingID,
		Status:       TodoNotStarted,
		Priority:     priority,
		DueDate:      in.DueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.SaveTodo(todoToRecord(todo)); err != nil {
		return nil, fmt.Errorf("failed to save todo: %w", err)
	}

	s.audit(actor.ID, "todo.create", "todo", todo.ID, todo.Title)
	return todo, nil
}

// ListTodos lists todos visible to the actor. Employees see todos assigned
// to them, reporters todos they created or are assigned, super admins
// everything.
func (s *Service) ListTodos(actor *User, f storage.TodoFilter) ([]*Todo, error) {
	switch actor.Role {
	case RoleEmployee:
		f.AssignedToID = actor.ID
		f.CreatedByID = ""
	case RoleReporter:
		f.InvolvedID = actor.ID
	case RoleSuperAdmin:
		// unrestricted
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}

	records, err := s.store.ListTodos(f)
	if err != nil {
		return nil, err
	}

	todos := make([]*Todo, len(records))
	for i, r := range records {
		todos[i] = todoFromRecord(r)
	}

	return todos, nil
}

// UpdateTodo applies a partial update. Only the assignee, the creator or a
// super admin may change a todo.
func (s *Service) UpdateTodo(actor *User, id string, in UpdateTodoInput) (*Todo, error) {
	record, err := s.editableTodo(actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		record.Title = *in.Title
	}
	if in.Status != nil {
		switch *in.Status {
		case TodoNotStarted, TodoInProgress, TodoDone:
			record.Status = *in.Status
		default:
			return nil, fmt.Errorf("%w: unknown todo status %q", ErrValidation, *in.Status)
		}
	}
	if in.Priority != nil {
		if err := validatePriority(*in.Priority); err != nil {
			return nil, err
		}
		record.Priority = *in.Priority
	}
	if in.DueDate != nil {
		record.DueDate = in.DueDate
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.store.SaveTodo(record); err != nil {
		return nil, fmt.Errorf("failed to save todo: %w", err)
	}

	s.audit(actor.ID, "todo.update", "todo", id, record.Status)
	return todoFromRecord(record), nil
}

// DeleteTodo removes a todo permanently.
func (s *Service) DeleteTodo(actor *User, id string) error {
	if _, err := s.editableTodo(actor, id); err != nil {
		return err
	}

	if err := s.store.DeleteTodo(id); err != nil {
		return err
	}

	s.audit(actor.ID, "todo.delete", "todo", id, "")
	return nil
}

// PromoteSuggestedTodo converts an AI-suggested action item into a real
// todo. The suggestion is marked promoted and cannot be promoted twice.
func (s *Service) PromoteSuggestedTodo(actor *User, suggestionID, assignedToID string, dueDate *time.Time) (*Todo, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}

	suggestion, err := s.store.GetSuggestedTodo(suggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.Promoted {
		return nil, fmt.Errorf("%w: suggestion already promoted", ErrConflict)
	}

	recording, err := s.store.GetRecording(suggestion.RecordingID)
	if err != nil {
		return nil, err
	}
	meetingRecord, err := s.store.GetMeeting(recording.MeetingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleSuperAdmin && meetingRecord.ReporterID != actor.ID {
		return nil, fmt.Errorf("%w: recording belongs to another reporter", ErrForbidden)
	}

	if assignedToID == "" {
		assignedToID = meetingRecord.EmployeeID
	}
	if _, err := s.store.GetUser(assignedToID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	todo := &Todo{
		ID:           storage.GenerateID(),
		Title:        suggestion.Title,
		AssignedToID: assignedToID,
		CreatedByID:  actor.ID,
		MeetingID:    recording.MeetingID,
		Status:       TodoNotStarted,
		Priority:     PriorityMedium,
		DueDate:      dueDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.SaveTodo(todoToRecord(todo)); err != nil {
		return nil, fmt.Errorf("failed to save todo: %w", err)
	}

	suggestion.Promoted = true
	if err := s.store.SaveSuggestedTodo(suggestion); err != nil {
		return nil, fmt.Errorf("failed to mark suggestion promoted: %w", err)
	}

	s.audit(actor.ID, "todo.promote", "todo", todo.ID, suggestionID)
	return todo, nil
}

// SendDueReminders emails assignees of open todos whose due date has passed.
// It is triggered by the periodic `remind` command and returns the number of
// reminders sent.
func (s *Service) SendDueReminders() (int, error) {
	records, err := s.store.ListDueTodos(TodoDone, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list due todos: %w", err)
	}

	sent := 0
	for _, record := range records {
		assignee, err := s.store.GetUser(record.AssignedToID)
		if err != nil {
			continue
		}
		body := fmt.Sprintf("<p>Your action item <b>%s</b> is past its due date.</p>", record.Title)
		s.sendMail([]string{assignee.Email}, "Action item overdue", body)
		sent++
	}

	return sent, nil
}

// editableTodo loads a todo and checks the actor may mutate it.
func (s *Service) editableTodo(actor *User, id string) (*storage.TodoRecord, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: authentication required", ErrForbidden)
	}

	record, err := s.store.GetTodo(id)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleSuperAdmin && actor.ID != record.AssignedToID && actor.ID != record.CreatedByID {
		return nil, fmt.Errorf("%w: todo belongs to someone else", ErrForbidden)
	}

	return record, nil
}

func validatePriority(p string) error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}
	return fmt.Errorf("%w: unknown priority %q", ErrValidation, p)
}
