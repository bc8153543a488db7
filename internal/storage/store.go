package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserRecord represents a user row.
type UserRecord struct {
	ID           string
	Email        string
	Name         string
	Role         string
	DepartmentID string
	CreatedAt    time.Time
}

// DepartmentRecord represents a department row.
type DepartmentRecord struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ScheduleRecord represents a recurring schedule row.
type ScheduleRecord struct {
	ID            string
	EmployeeID    string
	ReporterID    string
	Frequency     string
	DayOfWeek     int
	TimeOfDay     string
	IsActive      bool
	Deleted       bool
	NextMeetingAt *time.Time
	CreatedAt     time.Time
}

// MeetingRecord represents a meeting row.
type MeetingRecord struct {
	ID           string
	EmployeeID   string
	ReporterID   string
	ScheduleID   string
	MeetingAt    time.Time
	Status       string
	Notes        string
	FormResponse string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecordingRecord represents a meeting recording row.
type RecordingRecord struct {
	ID              string
	MeetingID       string
	Status          string
	Transcript      string
	Summary         string
	KeyPoints       []string
	SentimentLabel  string
	SentimentScore  float64
	QualityScore    float64
	ErrorMessage    string
	DurationSeconds int
	BlobPath        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SuggestedTodoRecord represents an analysis-suggested action item.
type SuggestedTodoRecord struct {
	ID           string
	RecordingID  string
	Title        string
	AssigneeHint string
	Promoted     bool
}

// TodoRecord represents a todo row.
type TodoRecord struct {
	ID           string
	Title        string
	AssignedToID string
	CreatedByID  string
	MeetingID    string
	Status       string
	Priority     string
	DueDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AttachmentRecord represents a meeting attachment row.
type AttachmentRecord struct {
	ID           string
	MeetingID    string
	FileName     string
	BlobPath     string
	SizeBytes    int64
	UploadedByID string
	CreatedAt    time.Time
}

// AuditRecord represents an audit log row.
type AuditRecord struct {
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}

// Users

// SaveUser inserts or replaces a user.
func (s *Store) SaveUser(u *UserRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO users (id, email, name, role, department_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Name, u.Role, nullString(u.DepartmentID), u.CreatedAt)

	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id string) (*UserRecord, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, email, name, role, department_id, created_at
		FROM users WHERE id = ?
	`, id))
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(email string) (*UserRecord, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, email, name, role, department_id, created_at
		FROM users WHERE email = ?
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (*UserRecord, error) {
	var u UserRecord
	var dept sql.NullString

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &dept, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}
	u.DepartmentID = dept.String

	return &u, nil
}

// ListUsers lists users, optionally filtered by role.
func (s *Store) ListUsers(role string) ([]*UserRecord, error) {
	query := `SELECT id, email, name, role, department_id, created_at FROM users`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*UserRecord
	for rows.Next() {
		var u UserRecord
		var dept sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &dept, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.DepartmentID = dept.String
		users = append(users, &u)
	}

	return users, rows.Err()
}

// Departments

// SaveDepartment inserts or replaces a department.
func (s *Store) SaveDepartment(d *DepartmentRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO departments (id, name, created_at)
		VALUES (?, ?, ?)
	`, d.ID, d.Name, d.CreatedAt)

	return err
}

// ListDepartments lists all departments.
func (s *Store) ListDepartments() ([]*DepartmentRecord, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM departments ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []*DepartmentRecord
	for rows.Next() {
		var d DepartmentRecord
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, &d)
	}

	return departments, rows.Err()
}

// Schedules

// SaveSchedule inserts or replaces a schedule.
func (s *Store) SaveSchedule(r *ScheduleRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO schedules
			(id, employee_id, reporter_id, frequency, day_of_week, time_of_day, is_active, deleted, next_meeting_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.EmployeeID, r.ReporterID, r.Frequency, r.DayOfWeek, r.TimeOfDay,
		r.IsActive, r.Deleted, nullTime(r.NextMeetingAt), r.CreatedAt)

	return err
}

// GetSchedule retrieves a schedule by ID. Soft-deleted schedules are still
// retrievable by ID so history stays reachable.
func (s *Store) GetSchedule(id string) (*ScheduleRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, employee_id, reporter_id, frequency, day_of_week, time_of_day, is_active, deleted, next_meeting_at, created_at
		FROM schedules WHERE id = ?
	`, id)

	return scanSchedule(row.Scan)
}

// ListSchedules lists non-deleted schedules, optionally for one reporter.
func (s *Store) ListSchedules(reporterID string) ([]*ScheduleRecord, error) {
	query := `
		SELECT id, employee_id, reporter_id, frequency, day_of_week, time_of_day, is_active, deleted, next_meeting_at, created_at
		FROM schedules WHERE deleted = 0`
	args := []any{}
	if reporterID != "" {
		query += ` AND reporter_id = ?`
		args = append(args, reporterID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

// ListDueSchedules lists active schedules whose next meeting time has passed.
func (s *Store) ListDueSchedules(now time.Time) ([]*ScheduleRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, employee_id, reporter_id, frequency, day_of_week, time_of_day, is_active, deleted, next_meeting_at, created_at
		FROM schedules
		WHERE deleted = 0 AND is_active = 1 AND next_meeting_at IS NOT NULL AND next_meeting_at <= ?
		ORDER BY next_meeting_at ASC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSchedules(rows)
}

func collectSchedules(rows *sql.Rows) ([]*ScheduleRecord, error) {
	var schedules []*ScheduleRecord
	for rows.Next() {
		rec, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, rec)
	}
	return schedules, rows.Err()
}

func scanSchedule(scan func(...any) error) (*ScheduleRecord, error) {
	var r ScheduleRecord
	var next sql.NullTime

	err := scan(&r.ID, &r.EmployeeID, &r.ReporterID, &r.Frequency, &r.DayOfWeek,
		&r.TimeOfDay, &r.IsActive, &r.Deleted, &next, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("schedule: %w", ErrNotFound)
		}
		return nil, err
	}
	if next.Valid {
		t := next.Time
		r.NextMeetingAt = &t
	}

	return &r, nil
}

// Meetings

// SaveMeeting inserts or replaces a meeting.
func (s *Store) SaveMeeting(m *MeetingRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO meetings
			(id, employee_id, reporter_id, schedule_id, meeting_at, status, notes, form_response, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.EmployeeID, m.ReporterID, nullString(m.ScheduleID), m.MeetingAt,
		m.Status, m.Notes, m.FormResponse, m.CreatedAt, m.UpdatedAt)

	return err
}

// GetMeeting retrieves a meeting by ID.
func (s *Store) GetMeeting(id string) (*MeetingRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, employee_id, reporter_id, schedule_id, meeting_at, status, notes, form_response, created_at, updated_at
		FROM meetings WHERE id = ?
	`, id)

	return scanMeeting(row.Scan)
}

func scanMeeting(scan func(...any) error) (*MeetingRecord, error) {
	var m MeetingRecord
	var schedule sql.NullString

	err := scan(&m.ID, &m.EmployeeID, &m.ReporterID, &schedule, &m.MeetingAt,
		&m.Status, &m.Notes, &m.FormResponse, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("meeting: %w", ErrNotFound)
		}
		return nil, err
	}
	m.ScheduleID = schedule.String

	return &m, nil
}

// CancelFutureMeetings transitions every meeting of a schedule that is in
// fromStatus with a meeting time after the cutoff into toStatus, returning
// the number of affected meetings.
func (s *Store) CancelFutureMeetings(scheduleID string, after time.Time, fromStatus, toStatus string) (int, error) {
	res, err := s.db.Exec(`
		UPDATE meetings SET status = ?, updated_at = ?
		WHERE schedule_id = ? AND status = ? AND meeting_at > ?
	`, toStatus, time.Now().UTC(), scheduleID, fromStatus, after)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	return int(n), err
}

// Recordings

// SaveRecording inserts or replaces a recording.
func (s *Store) SaveRecording(r *RecordingRecord) error {
	keyPointsJSON, _ := json.Marshal(r.KeyPoints)

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO recordings
			(id, meeting_id, status, transcript, summary, key_points, sentiment_label, sentiment_score,
			 quality_score, error_message, duration_seconds, blob_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.MeetingID, r.Status, r.Transcript, r.Summary, string(keyPointsJSON),
		r.SentimentLabel, r.SentimentScore, r.QualityScore, r.ErrorMessage,
		r.DurationSeconds, r.BlobPath, r.CreatedAt, r.UpdatedAt)

	return err
}

// UpdateRecording updates an existing recording in place. A recording that
// was deleted while its pipeline was still running is not resurrected; the
// update reports ErrNotFound instead.
func (s *Store) UpdateRecording(r *RecordingRecord) error {
	keyPointsJSON, _ := json.Marshal(r.KeyPoints)

	res, err := s.db.Exec(`
		UPDATE recordings
		SET status = ?, transcript = ?, summary = ?, key_points = ?, sentiment_label = ?,
		    sentiment_score = ?, quality_score = ?, error_message = ?, duration_seconds = ?,
		    blob_path = ?, updated_at = ?
		WHERE id = ?
	`, r.Status, r.Transcript, r.Summary, string(keyPointsJSON), r.SentimentLabel,
		r.SentimentScore, r.QualityScore, r.ErrorMessage, r.DurationSeconds,
		r.BlobPath, r.UpdatedAt, r.ID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recording: %w", ErrNotFound)
	}

	return nil
}

// GetRecording retrieves a recording by ID.
func (s *Store) GetRecording(id string) (*RecordingRecord, error) {
	row := s.db.QueryRow(recordingColumns+` FROM recordings WHERE id = ?`, id)
	return scanRecording(row.Scan)
}

// GetRecordingByMeeting retrieves the recording attached to a meeting.
func (s *Store) GetRecordingByMeeting(meetingID string) (*RecordingRecord, error) {
	row := s.db.QueryRow(recordingColumns+` FROM recordings WHERE meeting_id = ?`, meetingID)
	return scanRecording(row.Scan)
}

const recordingColumns = `
	SELECT id, meeting_id, status, transcript, summary, key_points, sentiment_label, sentiment_score,
	       quality_score, error_message, duration_seconds, blob_path, created_at, updated_at`

func scanRecording(scan func(...any) error) (*RecordingRecord, error) {
	var r RecordingRecord
	var keyPointsJSON string

	err := scan(&r.ID, &r.MeetingID, &r.Status, &r.Transcript, &r.Summary, &keyPointsJSON,
		&r.SentimentLabel, &r.SentimentScore, &r.QualityScore, &r.ErrorMessage,
		&r.DurationSeconds, &r.BlobPath, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recording: %w", ErrNotFound)
		}
		return nil, err
	}
	json.Unmarshal([]byte(keyPointsJSON), &r.KeyPoints)

	return &r, nil
}

// DeleteRecording removes a recording and its suggested todos.
func (s *Store) DeleteRecording(id string) error {
	if _, err := s.db.Exec(`DELETE FROM suggested_todos WHERE recording_id = ?`, id); err != nil {
		return err
	}

	res, err := s.db.Exec(`DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recording: %w", ErrNotFound)
	}

	return nil
}

// Suggested todos

// SaveSuggestedTodo inserts or replaces a suggested todo.
func (s *Store) SaveSuggestedTodo(r *SuggestedTodoRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO suggested_todos (id, recording_id, title, assignee_hint, promoted)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.RecordingID, r.Title, r.AssigneeHint, r.Promoted)

	return err
}

// GetSuggestedTodo retrieves a suggested todo by ID.
func (s *Store) GetSuggestedTodo(id string) (*SuggestedTodoRecord, error) {
	var r SuggestedTodoRecord

	err := s.db.QueryRow(`
		SELECT id, recording_id, title, assignee_hint, promoted
		FROM suggested_todos WHERE id = ?
	`, id).Scan(&r.ID, &r.RecordingID, &r.Title, &r.AssigneeHint, &r.Promoted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("suggested todo: %w", ErrNotFound)
		}
		return nil, err
	}

	return &r, nil
}

// ListSuggestedTodos lists suggestions for a recording.
func (s *Store) ListSuggestedTodos(recordingID string) ([]*SuggestedTodoRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, recording_id, title, assignee_hint, promoted
		FROM suggested_todos WHERE recording_id = ?
	`, recordingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*SuggestedTodoRecord
	for rows.Next() {
		var r SuggestedTodoRecord
		if err := rows.Scan(&r.ID, &r.RecordingID, &r.Title, &r.AssigneeHint, &r.Promoted); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, &r)
	}

	return suggestions, rows.Err()
}

// Todos

// SaveTodo inserts or replaces a todo.
func (s *Store) SaveTodo(t *TodoRecord) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO todos
			(id, title, assigned_to_id, created_by_id, meeting_id, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.AssignedToID, t.CreatedByID, nullString(t.MeetingID),
		t.Status, t.Priority, nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)

	return err
}

// GetTodo retrieves a todo by ID.
func (s *Store) GetTodo(id string) (*TodoRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, title, assigned_to_id, created_by_id, meeting_id, status, priority, due_date, created_at, updated_at
		FROM todos WHERE id = ?
	`, id)

	return scanTodo(row.Scan)
}

func scanTodo(scan func(...any) error) (*TodoRecord, error) {
	var t TodoRecord
	var meeting sql.NullString
	var due sql.NullTime

	err := scan(&t.ID, &t.Title, &t.AssignedToID, &t.CreatedByID, &meeting,
		&t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("todo: %w", ErrNotFound)
		}
		return nil, err
	}
	t.MeetingID = meeting.String
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}

	return &t, nil
}

// DeleteTodo removes a todo.
func (s *Store) DeleteTodo(id string) error {
	res, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("todo: %w", ErrNotFound)
	}

	return nil
}

// Attachments

// SaveAttachment inserts an attachment.
func (s *Store) SaveAttachment(a *AttachmentRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO attachments (id, meeting_id, file_name, blob_path, size_bytes, uploaded_by_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.MeetingID, a.FileName, a.BlobPath, a.SizeBytes, a.UploadedByID, a.CreatedAt)

	return err
}

// ListAttachments lists attachments for a meeting.
func (s *Store) ListAttachments(meetingID string) ([]*AttachmentRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, meeting_id, file_name, blob_path, size_bytes, uploaded_by_id, created_at
		FROM attachments WHERE meeting_id = ? ORDER BY created_at ASC
	`, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*AttachmentRecord
	for rows.Next() {
		var a AttachmentRecord
		if err := rows.Scan(&a.ID, &a.MeetingID, &a.FileName, &a.BlobPath, &a.SizeBytes, &a.UploadedByID, &a.CreatedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, &a)
	}

	return attachments, rows.Err()
}

// Audit log

// AppendAudit appends an audit log entry.
func (s *Store) AppendAudit(e *AuditRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.Detail, e.CreatedAt)

	return err
}

// Settings

// GetSetting retrieves a setting value by key.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
		}
		return "", err
	}

	return value, nil
}

// PutSetting stores a setting value.
func (s *Store) PutSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UTC())

	return err
}

// ListSettings returns all settings as a key/value map.
func (s *Store) ListSettings() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}

	return settings, rows.Err()
}

// Helpers

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
