package storage

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// MeetingFilter narrows meeting listings. Zero-value fields are ignored.
type MeetingFilter struct {
	EmployeeID string
	ReporterID string
	ScheduleID string
	Status     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// TodoFilter narrows todo listings. Zero-value fields are ignored.
// InvolvedID matches todos the user either created or is assigned.
type TodoFilter struct {
	AssignedToID string
	CreatedByID  string
	InvolvedID   string
	MeetingID    string
	Status       string
	Limit        int
	Offset       int
}

// ListMeetings lists meetings matching the filter, most recent first.
func (s *Store) ListMeetings(f MeetingFilter) ([]*MeetingRecord, error) {
	q := sq.Select("id", "employee_id", "reporter_id", "schedule_id", "meeting_at",
		"status", "notes", "form_response", "created_at", "updated_at").
		From("meetings").
		OrderBy("meeting_at DESC")

	if f.EmployeeID != "" {
		q = q.Where(sq.Eq{"employee_id": f.EmployeeID})
	}
	if f.ReporterID != "" {
		q = q.Where(sq.Eq{"reporter_id": f.ReporterID})
	}
	if f.ScheduleID != "" {
		q = q.Where(sq.Eq{"schedule_id": f.ScheduleID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.From != nil {
		q = q.Where(sq.GtOrEq{"meeting_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(sq.Lt{"meeting_at": *f.To})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []*MeetingRecord
	for rows.Next() {
		rec, err := scanMeeting(rows.Scan)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, rec)
	}

	return meetings, rows.Err()
}

// ListTodos lists todos matching the filter, most recently updated first.
func (s *Store) ListTodos(f TodoFilter) ([]*TodoRecord, error) {
	q := sq.Select("id", "title", "assigned_to_id", "created_by_id", "meeting_id",
		"status", "priority", "due_date", "created_at", "updated_at").
		From("todos").
		OrderBy("updated_at DESC")

	if f.AssignedToID != "" {
		q = q.Where(sq.Eq{"assigned_to_id": f.AssignedToID})
	}
	if f.CreatedByID != "" {
		q = q.Where(sq.Eq{"created_by_id": f.CreatedByID})
	}
	if f.InvolvedID != "" {
		q = q.Where(sq.Or{
			sq.Eq{"assigned_to_id": f.InvolvedID},
			sq.Eq{"created_by_id": f.InvolvedID},
		})
	}
	if f.MeetingID != "" {
		q = q.Where(sq.Eq{"meeting_id": f.MeetingID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*TodoRecord
	for rows.Next() {
		rec, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		todos = append(todos, rec)
	}

	return todos, rows.Err()
}

// ListDueTodos lists unfinished todos due before the cutoff, for reminders.
func (s *Store) ListDueTodos(doneStatus string, before time.Time) ([]*TodoRecord, error) {
	query, args, err := sq.Select("id", "title", "assigned_to_id", "created_by_id", "meeting_id",
		"status", "priority", "due_date", "created_at", "updated_at").
		From("todos").
		Where(sq.NotEq{"status": doneStatus}).
		Where(sq.NotEq{"due_date": nil}).
		Where(sq.LtOrEq{"due_date": before}).
		OrderBy("due_date ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*TodoRecord
	for rows.Next() {
		rec, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		todos = append(todos, rec)
	}

	return todos, rows.Err()
}

// ListAvailableEmployees lists employees that have no active schedule with
// the given reporter. This backs the presentation-layer uniqueness rule of
// one active schedule per (reporter, employee) pair.
func (s *Store) ListAvailableEmployees(reporterID, employeeRole string) ([]*UserRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, email, name, role, department_id, created_at
		FROM users
		WHERE role = ?
		  AND id NOT IN (
			SELECT employee_id FROM schedules
			WHERE reporter_id = ? AND is_active = 1 AND deleted = 0
		  )
		ORDER BY name ASC
	`, employeeRole, reporterID)
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

// CountMeetingsByStatus aggregates meeting counts per status, optionally
// scoped to one reporter.
func (s *Store) CountMeetingsByStatus(reporterID string) (map[string]int, error) {
	q := sq.Select("status", "COUNT(*)").From("meetings").GroupBy("status")
	if reporterID != "" {
		q = q.Where(sq.Eq{"reporter_id": reporterID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// AverageQualityScore returns the mean quality score over completed
// recordings, optionally scoped to one reporter's meetings.
func (s *Store) AverageQualityScore(completedStatus, reporterID string) (float64, error) {
	q := sq.Select("COALESCE(AVG(r.quality_score), 0)").
		From("recordings r").
		Join("meetings m ON m.id = r.meeting_id").
		Where(sq.Eq{"r.status": completedStatus})
	if reporterID != "" {
		q = q.Where(sq.Eq{"m.reporter_id": reporterID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}

	var avg float64
	if err := s.db.QueryRow(query, args...).Scan(&avg); err != nil {
		return 0, err
	}

	return avg, nil
}

// SentimentDistribution aggregates completed-recording counts per sentiment
// label, optionally scoped to one reporter's meetings.
func (s *Store) SentimentDistribution(completedStatus, reporterID string) (map[string]int, error) {
	q := sq.Select("r.sentiment_label", "COUNT(*)").
		From("recordings r").
		Join("meetings m ON m.id = r.meeting_id").
		Where(sq.Eq{"r.status": completedStatus}).
		Where(sq.NotEq{"r.sentiment_label": ""}).
		GroupBy("r.sentiment_label")
	if reporterID != "" {
		q = q.Where(sq.Eq{"m.reporter_id": reporterID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		dist[label] = count
	}

	return dist, rows.Err()
}

// CountTodosByStatus aggregates todo counts per status, optionally scoped
// to todos created by one reporter.
func (s *Store) CountTodosByStatus(createdByID string) (map[string]int, error) {
	q := sq.Select("status", "COUNT(*)").From("todos").GroupBy("status")
	if createdByID != "" {
		q = q.Where(sq.Eq{"created_by_id": createdByID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// CountMeetingsByDepartment aggregates meeting counts per employee department.
func (s *Store) CountMeetingsByDepartment() (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT d.name, COUNT(m.id)
		FROM meetings m
		JOIN users u ON u.id = m.employee_id
		JOIN departments d ON d.id = u.department_id
		GROUP BY d.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		counts[name] = count
	}

	return counts, rows.Err()
}

// CountByEntity returns row counts per entity table, for the status command.
func (s *Store) CountByEntity() (map[string]int, error) {
	tables := []string{
		"users", "departments", "schedules", "meetings", "recordings",
		"todos", "suggested_todos", "attachments", "audit_logs",
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}

	return counts, nil
}
