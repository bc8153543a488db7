package core

import (
	"context"
	"io"
	"time"

	"github.com/nishantrana1982/oneonone/internal/speech"
	"github.com/nishantrana1982/oneonone/internal/storage"
)

// Storage persists all oneonone entities.
// Implementations: storage.Store (SQLite)
type Storage interface {
	SaveUser(u *storage.UserRecord) error
	GetUser(id string) (*storage.UserRecord, error)
	GetUserByEmail(email string) (*storage.UserRecord, error)
	ListUsers(role string) ([]*storage.UserRecord, error)
	ListAvailableEmployees(reporterID, employeeRole string) ([]*storage.UserRecord, error)

	SaveDepartment(d *storage.DepartmentRecord) error
	ListDepartments() ([]*storage.DepartmentRecord, error)

	SaveSchedule(r *storage.ScheduleRecord) error
	GetSchedule(id string) (*storage.ScheduleRecord, error)
	ListSchedules(reporterID string) ([]*storage.ScheduleRecord, error)
	ListDueSchedules(now time.Time) ([]*storage.ScheduleRecord, error)

	SaveMeeting(m *storage.MeetingRecord) error
	GetMeeting(id string) (*storage.MeetingRecord, error)
	ListMeetings(f storage.MeetingFilter) ([]*storage.MeetingRecord, error)
	CancelFutureMeetings(scheduleID string, after time.Time, fromStatus, toStatus string) (int, error)

	SaveRecording(r *storage.RecordingRecord) error
	UpdateRecording(r *storage.RecordingRecord) error
	GetRecording(id string) (*storage.RecordingRecord, error)
	GetRecordingByMeeting(meetingID string) (*storage.RecordingRecord, error)
	DeleteRecording(id string) error

	SaveSuggestedTodo(r *storage.SuggestedTodoRecord) error
	GetSuggestedTodo(id string) (*storage.SuggestedTodoRecord, error)
	ListSuggestedTodos(recordingID string) ([]*storage.SuggestedTodoRecord, error)

	SaveTodo(t *storage.TodoRecord) error
	GetTodo(id string) (*storage.TodoRecord, error)
	ListTodos(f storage.TodoFilter) ([]*storage.TodoRecord, error)
	ListDueTodos(doneStatus string, before time.Time) ([]*storage.TodoRecord, error)
	DeleteTodo(id string) error

	SaveAttachment(a *storage.AttachmentRecord) error
	ListAttachments(meetingID string) ([]*storage.AttachmentRecord, error)

	AppendAudit(e *storage.AuditRecord) error

	GetSetting(key string) (string, error)
	PutSetting(key, value string) error
	ListSettings() (map[string]string, error)

	CountMeetingsByStatus(reporterID string) (map[string]int, error)
	CountTodosByStatus(createdByID string) (map[string]int, error)
	AverageQualityScore(completedStatus, reporterID string) (float64, error)
	SentimentDistribution(completedStatus, reporterID string) (map[string]int, error)
	CountMeetingsByDepartment() (map[string]int, error)
	CountByEntity() (map[string]int, error)

	Close() error
}

// BlobStore persists binary artifacts (audio, attachments).
// Implementations: blob.Store (local filesystem)
type BlobStore interface {
	// Save writes the reader to a new blob and returns its path and size.
	Save(name string, r io.Reader) (string, int64, error)

	// Open opens a stored blob for reading.
	Open(path string) (io.ReadCloser, error)

	// Delete removes a stored blob.
	Delete(path string) error
}

// Transcriber converts an audio artifact into a transcript.
// Implementations: speech.Client
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, fileName, language string) (*speech.Transcript, error)
}

// Analyzer derives summary, key points, sentiment, quality score and
// suggested action items from a transcript.
// Implementations: speech.Client
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (*speech.Analysis, error)
}

// Mailer delivers notification emails.
// Implementations: notify.Mailer (SMTP)
type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}
