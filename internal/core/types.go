package core

import (
	"errors"
	"time"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

// User role constants
const (
	RoleEmployee   = "employee"
	RoleReporter   = "reporter"
	RoleSuperAdmin = "super_admin"
)

// Schedule frequency constants
const (
	FrequencyWeekly   = "WEEKLY"
	FrequencyBiweekly = "BIWEEKLY"
	FrequencyMonthly  = "MONTHLY"
)

// Meeting status constants
const (
	MeetingScheduled = "SCHEDULED"
	MeetingProposed  = "PROPOSED"
	MeetingCompleted = "COMPLETED"
	MeetingCancelled = "CANCELLED"
)

// Recording status constants, in pipeline order
const (
	RecordingUploading    = "UPLOADING"
	RecordingUploaded     = "UPLOADED"
	RecordingTranscribing = "TRANSCRIBING"
	RecordingAnalyzing    = "ANALYZING"
	RecordingCompleted    = "COMPLETED"
	RecordingFailed       = "FAILED"
)

// Todo status constants
const (
	TodoNotStarted = "NOT_STARTED"
	TodoInProgress = "IN_PROGRESS"
	TodoDone       = "DONE"
)

// Todo priority constants
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// MaxRecordingSeconds caps a single recording session at 25 minutes.
const MaxRecordingSeconds = 1500

// StatusPollInterval is the interval clients should wait between recording
// status reads. Published in the status payload so clients don't hardcode it.
const StatusPollInterval = 2 * time.Second

// Setting keys
const (
	SettingOrgDomain      = "org_email_domain"
	SettingSpeechLanguage = "speech_language"
)

// Sentinel errors. Handlers map these to HTTP status codes.
var (
	ErrNotFound   = storage.ErrNotFound
	ErrValidation = errors.New("validation")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// User represents an authenticated person in the organization.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	DepartmentID string    `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Department groups users for insight aggregation.
type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Rule is the shape of a recurring schedule: which weekday, what time,
// how often.
type Rule struct {
	Frequency string `json:"frequency"`   // WEEKLY, BIWEEKLY, MONTHLY
	DayOfWeek int    `json:"day_of_week"` // 0 = Sunday .. 6 = Saturday
	TimeOfDay string `json:"time_of_day"` // 24-hour "HH:MM"
}

// Schedule is a recurring one-on-one schedule between a reporter and an
// employee. Deleting is a soft delete so meeting history stays queryable.
type Schedule struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employee_id"`
	ReporterID    string     `json:"reporter_id"`
	Rule          Rule       `json:"rule"`
	IsActive      bool       `json:"is_active"`
	NextMeetingAt *time.Time `json:"next_meeting_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Meeting is a single one-on-one instance, ad hoc or materialized from a
// schedule. Meetings are never hard-deleted; cancellation is a status.
type Meeting struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	ReporterID   string    `json:"reporter_id"`
	ScheduleID   string    `json:"schedule_id,omitempty"`
	MeetingAt    time.Time `json:"meeting_at"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	FormResponse string    `json:"form_response,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentiment is the analysis service's overall read of a conversation.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Recording is an audio capture of a meeting plus its derived artifacts.
// Transcript, summary, key points, sentiment and quality score are only
// populated once Status is COMPLETED.
type Recording struct {
	ID              string    `json:"id"`
	MeetingID       string    `json:"meeting_id"`
	Status          string    `json:"status"`
	Transcript      string    `json:"transcript,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	KeyPoints       []string  `json:"key_points,omitempty"`
	Sentiment       Sentiment `json:"sentiment"`
	QualityScore    float64   `json:"quality_score"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SuggestedTodo is an action item proposed by the analysis pipeline. It
// becomes a real Todo only on explicit promotion.
type SuggestedTodo struct {
	ID           string `json:"id"`
	RecordingID  string `json:"recording_id"`
	Title        string `json:"title"`
	AssigneeHint string `json:"assignee_hint,omitempty"`
	Promoted     bool   `json:"promoted"`
}

// Todo is an action item with a lifecycle independent from meetings.
type Todo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	AssignedToID string     `json:"assigned_to_id"`
	CreatedByID  string     `json:"created_by_id"`
	MeetingID    string     `json:"meeting_id,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Attachment is a file linked to a meeting.
type Attachment struct {
	ID           string    `json:"id"`
	MeetingID    string    `json:"meeting_id"`
	FileName     string    `json:"file_name"`
	SizeBytes    int64     `json:"size_bytes"`
	UploadedByID string    `json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordingStatus is the poll target payload during processing.
type RecordingStatus struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	ErrorMessage       string `json:"error_message,omitempty"`
	Terminal           bool   `json:"terminal"`
	PollIntervalMillis int    `json:"poll_interval_ms"`
}

// ScheduleResult reports the outcome of a destructive schedule operation.
type ScheduleResult struct {
	Schedule              *Schedule `json:"schedule,omitempty"`
	CancelledMeetingCount int       `json:"cancelled_meeting_count"`
}

// Insights aggregates organization- or reporter-scoped meeting statistics.
type Insights struct {
	MeetingsByStatus     map[string]int `json:"meetings_by_status"`
	TodosByStatus        map[string]int `json:"todos_by_status"`
	AverageQualityScore  float64        `json:"average_quality_score"`
	SentimentBreakdown   map[string]int `json:"sentiment_breakdown"`
	MeetingsByDepartment map[string]int `json:"meetings_by_department,omitempty"`
}

// Type conversion helpers

func userFromRecord(r *storage.UserRecord) *User {
	return &User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		Role:         r.Role,
		DepartmentID: r.DepartmentID,
		CreatedAt:    r.CreatedAt,
	}
}

func userToRecord(u *User) *storage.UserRecord {
	return &storage.UserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		CreatedAt:    u.CreatedAt,
	}
}

func scheduleFromRecord(r *storage.ScheduleRecord) *Schedule {
	return &Schedule{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		ReporterID: r.ReporterID,
		Rule: Rule{
			Frequency: r.Frequency,
			DayOfWeek: r.DayOfWeek,
			TimeOfDay: r.TimeOfDay,
		},
		IsActive:      r.IsActive,
		NextMeetingAt: r.NextMeetingAt,
		CreatedAt:     r.CreatedAt,
	}
}

func scheduleToRecord(s *Schedule, deleted bool) *storage.ScheduleRecord {
	return &storage.ScheduleRecord{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		ReporterID:    s.ReporterID,
		Frequency:     s.Rule.Frequency,
		DayOfWeek:     s.Rule.DayOfWeek,
		TimeOfDay:     s.Rule.TimeOfDay,
		IsActive:      s.IsActive,
		Deleted:       deleted,
		NextMeetingAt: s.NextMeetingAt,
		CreatedAt:     s.CreatedAt,
	}
}

func meetingFromRecord(r *storage.MeetingRecord) *Meeting {
	return &Meeting{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		ReporterID:   r.ReporterID,
		ScheduleID:   r.ScheduleID,
		MeetingAt:    r.MeetingAt,
		Status:       r.Status,
		Notes:        r.Notes,
		FormResponse: r.FormResponse,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func meetingToRecord(m *Meeting) *storage.MeetingRecord {
	return &storage.MeetingRecord{
		ID:           m.ID,
		EmployeeID:   m.EmployeeID,
		ReporterID:   m.ReporterID,
		ScheduleID:   m.ScheduleID,
		MeetingAt:    m.MeetingAt,
		Status:       m.Status,
		Notes:        m.Notes,
		FormResponse: m.FormResponse,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func recordingFromRecord(r *storage.RecordingRecord) *Recording {
	return &Recording{
		ID:         r.ID,
		MeetingID:  r.MeetingID,
		Status:     r.Status,
		Transcript: r.Transcript,
		Summary:    r.Summary,
		KeyPoints:  r.KeyPoints,
		Sentiment: Sentiment{
			Label: r.SentimentLabel,
			Score: r.SentimentScore,
		},
		QualityScore:    r.QualityScore,
		ErrorMessage:    r.ErrorMessage,
		DurationSeconds: r.DurationSeconds,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func todoFromRecord(r *storage.TodoRecord) *Todo {
	return &Todo{
		ID:           r.ID,
		Title:        r.Title,
		AssignedToID: r.AssignedToID,
		CreatedByID:  r.CreatedByID,
		MeetingID:    r.MeetingID,
		Status:       r.Status,
		Priority:     r.Priority,
		DueDate:      r.DueDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func todoToRecord(t *Todo) *storage.TodoRecord {
	return &storage.TodoRecord{
		ID:           t.ID,
		Title:        t.Title,
		AssignedToID: t.AssignedToID,
		CreatedByID:  t.CreatedByID,
		MeetingID:    t.MeetingID,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func suggestedFromRecord(r *storage.SuggestedTodoRecord) *SuggestedTodo {
	return &SuggestedTodo{
		ID:           r.ID,
		RecordingID:  r.RecordingID,
		Title:        r.Title,
		AssigneeHint: r.AssigneeHint,
		Promoted:     r.Promoted,
	}
}

func attachmentFromRecord(r *storage.AttachmentRecord) *Attachment {
	return &Attachment{
		ID:           r.ID,
		MeetingID:    r.MeetingID,
		FileName:     r.FileName,
		SizeBytes:    r.SizeBytes,
		UploadedByID: r.UploadedByID,
		CreatedAt:    r.CreatedAt,
	}
}
