package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/nishantrana1982/oneonone/internal/speech"
	"github.com/nishantrana1982/oneonone/internal/storage"
)

// testNow is a fixed Wednesday morning.
var testNow = time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

// fakeStore is an in-memory Storage implementation for service tests.
type fakeStore struct {
	users       map[string]*storage.UserRecord
	departments map[string]*storage.DepartmentRecord
	schedules   map[string]*storage.ScheduleRecord
	meetings    map[string]*storage.MeetingRecord
	recordings  map[string]*storage.RecordingRecord
	suggestions map[string]*storage.SuggestedTodoRecord
	todos       map[string]*storage.TodoRecord
	attachments map[string]*storage.AttachmentRecord
	audits      []*storage.AuditRecord
	settings    map[string]string

	auditErr     error
	settingReads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*storage.UserRecord),
		departments: make(map[string]*storage.DepartmentRecord),
		schedules:   make(map[string]*storage.ScheduleRecord),
		meetings:    make(map[string]*storage.MeetingRecord),
		recordings:  make(map[string]*storage.RecordingRecord),
		suggestions: make(map[string]*storage.SuggestedTodoRecord),
		todos:       make(map[string]*storage.TodoRecord),
		attachments: make(map[string]*storage.AttachmentRecord),
		settings:    make(map[string]string),
	}
}

func (f *fakeStore) SaveUser(u *storage.UserRecord) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) GetUser(id string) (*storage.UserRecord, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(email string) (*storage.UserRecord, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
}

func (f *fakeStore) ListUsers(role string) ([]*storage.UserRecord, error) {
	var out []*storage.UserRecord
	for _, u := range f.users {
		if role == "" || u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListAvailableEmployees(reporterID, employeeRole string) ([]*storage.UserRecord, error) {
	taken := make(map[string]bool)
	for _, s := range f.schedules {
		if s.ReporterID == reporterID && s.IsActive && !s.Deleted {
			taken[s.EmployeeID] = true
		}
	}

	var out []*storage.UserRecord
	for _, u := range f.users {
		if u.Role == employeeRole && !taken[u.ID] {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) SaveDepartment(d *storage.DepartmentRecord) error {
	cp := *d
	f.departments[d.ID] = &cp
	return nil
}

func (f *fakeStore) ListDepartments() ([]*storage.DepartmentRecord, error) {
	var out []*storage.DepartmentRecord
	for _, d := range f.departments {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) SaveSchedule(r *storage.ScheduleRecord) error {
	cp := *r
	f.schedules[r.ID] = &cp
	return nil
}

func (f *fakeStore) GetSchedule(id string) (*storage.ScheduleRecord, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %s: %w", id, storage.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListSchedules(reporterID string) ([]*storage.ScheduleRecord, error) {
	var out []*storage.ScheduleRecord
	for _, s := range f.schedules {
		if s.Deleted {
			continue
		}
		if reporterID != "" && s.ReporterID != reporterID {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListDueSchedules(now time.Time) ([]*storage.ScheduleRecord, error) {
	var out []*storage.ScheduleRecord
	for _, s := range f.schedules {
		if !s.IsActive || s.Deleted || s.NextMeetingAt == nil {
			continue
		}
		if s.NextMeetingAt.After(now) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) SaveMeeting(m *storage.MeetingRecord) error {
	cp := *m
	f.meetings[m.ID] = &cp
	return nil
}

func (f *fakeStore) GetMeeting(id string) (*storage.MeetingRecord, error) {
	m, ok := f.meetings[id]
	if !ok {
		return nil, fmt.Errorf("meeting %s: %w", id, storage.ErrNotFound)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) ListMeetings(filter storage.MeetingFilter) ([]*storage.MeetingRecord, error) {
	var out []*storage.MeetingRecord
	for _, m := range f.meetings {
		if filter.EmployeeID != "" && m.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ReporterID != "" && m.ReporterID != filter.ReporterID {
			continue
		}
		if filter.ScheduleID != "" && m.ScheduleID != filter.ScheduleID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CancelFutureMeetings(scheduleID string, after time.Time, fromStatus, toStatus string) (int, error) {
	count := 0
	for _, m := range f.meetings {
		if m.ScheduleID == scheduleID && m.Status == fromStatus && m.MeetingAt.After(after) {
			m.Status = toStatus
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SaveRecording(r *storage.RecordingRecord) error {
	cp := *r
	f.recordings[r.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateRecording(r *storage.RecordingRecord) error {
	if _, ok := f.recordings[r.ID]; !ok {
		return fmt.Errorf("recording %s: %w", r.ID, storage.ErrNotFound)
	}
	cp := *r
	f.recordings[r.ID] = &cp
	return nil
}

func (f *fakeStore) GetRecording(id string) (*storage.RecordingRecord, error) {
	r, ok := f.recordings[id]
	if !ok {
		return nil, fmt.Errorf("recording %s: %w", id, storage.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetRecordingByMeeting(meetingID string) (*storage.RecordingRecord, error) {
	for _, r := range f.recordings {
		if r.MeetingID == meetingID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("recording for meeting %s: %w", meetingID, storage.ErrNotFound)
}

func (f *fakeStore) DeleteRecording(id string) error {
	delete(f.recordings, id)
	return nil
}

func (f *fakeStore) SaveSuggestedTodo(r *storage.SuggestedTodoRecord) error {
	cp := *r
	f.suggestions[r.ID] = &cp
	return nil
}

func (f *fakeStore) GetSuggestedTodo(id string) (*storage.SuggestedTodoRecord, error) {
	r, ok := f.suggestions[id]
	if !ok {
		return nil, fmt.Errorf("suggested todo %s: %w", id, storage.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListSuggestedTodos(recordingID string) ([]*storage.SuggestedTodoRecord, error) {
	var out []*storage.SuggestedTodoRecord
	for _, r := range f.suggestions {
		if r.RecordingID == recordingID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeStore) SaveTodo(t *storage.TodoRecord) error {
	cp := *t
	f.todos[t.ID] = &cp
	return nil
}

func (f *fakeStore) GetTodo(id string) (*storage.TodoRecord, error) {
	t, ok := f.todos[id]
	if !ok {
		return nil, fmt.Errorf("todo %s: %w", id, storage.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) ListTodos(filter storage.TodoFilter) ([]*storage.TodoRecord, error) {
	var out []*storage.TodoRecord
	for _, t := range f.todos {
		if filter.AssignedToID != "" && t.AssignedToID != filter.AssignedToID {
			continue
		}
		if filter.CreatedByID != "" && t.CreatedByID != filter.CreatedByID {
			continue
		}
		if filter.InvolvedID != "" && t.AssignedToID != filter.InvolvedID && t.CreatedByID != filter.InvolvedID {
			continue
		}
		if filter.MeetingID != "" && t.MeetingID != filter.MeetingID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListDueTodos(doneStatus string, before time.Time) ([]*storage.TodoRecord, error) {
	var out []*storage.TodoRecord
	for _, t := range f.todos {
		if t.Status == doneStatus || t.DueDate == nil || t.DueDate.After(before) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteTodo(id string) error {
	delete(f.todos, id)
	return nil
}

func (f *fakeStore) SaveAttachment(a *storage.AttachmentRecord) error {
	cp := *a
	f.attachments[a.ID] = &cp
	return nil
}

func (f *fakeStore) ListAttachments(meetingID string) ([]*storage.AttachmentRecord, error) {
	var out []*storage.AttachmentRecord
	for _, a := range f.attachments {
		if a.MeetingID == meetingID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) AppendAudit(e *storage.AuditRecord) error {
	if f.auditErr != nil {
		return f.auditErr
	}
	cp := *e
	f.audits = append(f.audits, &cp)
	return nil
}

func (f *fakeStore) GetSetting(key string) (string, error) {
	f.settingReads++
	v, ok := f.settings[key]
	if !ok {
		return "", fmt.Errorf("setting %s: %w", key, storage.ErrNotFound)
	}
	return v, nil
}

func (f *fakeStore) PutSetting(key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) ListSettings() (map[string]string, error) {
	out := make(map[string]string, len(f.settings))
	for k, v := range f.settings {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) CountMeetingsByStatus(reporterID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, m := range f.meetings {
		if reporterID != "" && m.ReporterID != reporterID {
			continue
		}
		counts[m.Status]++
	}
	return counts, nil
}

func (f *fakeStore) CountTodosByStatus(createdByID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, t := range f.todos {
		if createdByID != "" && t.CreatedByID != createdByID {
			continue
		}
		counts[t.Status]++
	}
	return counts, nil
}

func (f *fakeStore) AverageQualityScore(completedStatus, reporterID string) (float64, error) {
	sum, n := 0.0, 0
	for _, r := range f.recordings {
		if r.Status != completedStatus {
			continue
		}
		m, ok := f.meetings[r.MeetingID]
		if !ok {
			continue
		}
		if reporterID != "" && m.ReporterID != reporterID {
			continue
		}
		sum += r.QualityScore
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (f *fakeStore) SentimentDistribution(completedStatus, reporterID string) (map[string]int, error) {
	dist := make(map[string]int)
	for _, r := range f.recordings {
		if r.Status != completedStatus || r.SentimentLabel == "" {
			continue
		}
		m, ok := f.meetings[r.MeetingID]
		if !ok {
			continue
		}
		if reporterID != "" && m.ReporterID != reporterID {
			continue
		}
		dist[r.SentimentLabel]++
	}
	return dist, nil
}

func (f *fakeStore) CountMeetingsByDepartment() (map[string]int, error) {
	counts := make(map[string]int)
	for _, m := range f.meetings {
		u, ok := f.users[m.EmployeeID]
		if !ok || u.DepartmentID == "" {
			continue
		}
		d, ok := f.departments[u.DepartmentID]
		if !ok {
			continue
		}
		counts[d.Name]++
	}
	return counts, nil
}

func (f *fakeStore) CountByEntity() (map[string]int, error) {
	return map[string]int{
		"users":    len(f.users),
		"meetings": len(f.meetings),
		"todos":    len(f.todos),
	}, nil
}

func (f *fakeStore) Close() error { return nil }

// fakeBlob keeps blobs in memory.
type fakeBlob struct {
	blobs   map[string][]byte
	saveErr error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{blobs: make(map[string][]byte)}
}

func (f *fakeBlob) Save(name string, r io.Reader) (string, int64, error) {
	if f.saveErr != nil {
		return "", 0, f.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	path := "blob-" + name
	f.blobs[path] = data
	return path, int64(len(data)), nil
}

func (f *fakeBlob) Open(path string) (io.ReadCloser, error) {
	data, ok := f.blobs[path]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBlob) Delete(path string) error {
	delete(f.blobs, path)
	return nil
}

// fakeTranscriber and fakeAnalyzer stub the speech pipeline.
type fakeTranscriber struct {
	transcribeFunc func(ctx context.Context, audio io.Reader, fileName, language string) (*speech.Transcript, error)
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio io.Reader, fileName, language string) (*speech.Transcript, error) {
	return f.transcribeFunc(ctx, audio, fileName, language)
}

type fakeAnalyzer struct {
	analyzeFunc func(ctx context.Context, transcript string) (*speech.Analysis, error)
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, transcript string) (*speech.Analysis, error) {
	return f.analyzeFunc(ctx, transcript)
}

// fakeMailer records sent messages.
type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      []string
	subject string
}

func (f *fakeMailer) Send(to []string, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

// testDeps bundles the fakes backing a service under test.
type testDeps struct {
	store  *fakeStore
	blob   *fakeBlob
	mailer *fakeMailer

	admin    *User
	reporter *User
	employee *User
	other    *User
}

// newTestService builds a service over fakes with a fixed clock and
// synchronous async execution.
func newTestService() (*Service, *testDeps) {
	deps := &testDeps{
		store:  newFakeStore(),
		blob:   newFakeBlob(),
		mailer: &fakeMailer{},
	}

	transcriber := &fakeTranscriber{
		transcribeFunc: func(ctx context.Context, audio io.Reader, fileName, language string) (*speech.Transcript, error) {
			return &speech.Transcript{Text: "we talked about the roadmap", DurationSeconds: 900}, nil
		},
	}
	analyzer := &fakeAnalyzer{
		analyzeFunc: func(ctx context.Context, transcript string) (*speech.Analysis, error) {
			return &speech.Analysis{
				Summary:        "Roadmap discussion",
				KeyPoints:      []string{"ship Q2 milestone"},
				SentimentLabel: "positive",
				SentimentScore: 0.8,
				QualityScore:   72,
				SuggestedTodos: []speech.SuggestedItem{{Title: "Write the Q2 plan"}},
			}, nil
		},
	}

	svc := NewServiceWithDeps(ServiceDeps{
		Config:      Config{OrgDomain: "example.com"},
		Store:       deps.store,
		Blob:        deps.blob,
		Transcriber: transcriber,
		Analyzer:    analyzer,
		Mailer:      deps.mailer,
		Now:         func() time.Time { return testNow },
		Async:       func(fn func()) { fn() },
	})

	deps.admin = seedUser(deps.store, "admin", RoleSuperAdmin)
	deps.reporter = seedUser(deps.store, "reporter", RoleReporter)
	deps.employee = seedUser(deps.store, "employee", RoleEmployee)
	deps.other = seedUser(deps.store, "other", RoleReporter)

	return svc, deps
}

func seedUser(store *fakeStore, name, role string) *User {
	record := &storage.UserRecord{
		ID:        "user-" + name,
		Email:     name + "@example.com",
		Name:      name,
		Role:      role,
		CreatedAt: testNow,
	}
	store.SaveUser(record)
	return userFromRecord(record)
}

func seedMeeting(store *fakeStore, id, employeeID, reporterID, scheduleID, status string, at time.Time) {
	store.SaveMeeting(&storage.MeetingRecord{
		ID:         id,
		EmployeeID: employeeID,
		ReporterID: reporterID,
		ScheduleID: scheduleID,
		MeetingAt:  at,
		Status:     status,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	})
}
