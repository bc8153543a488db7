package core

import (
	"fmt"
	"log"
	"time"

	"github.com/nishantrana1982/oneonone/internal/blob"
	"github.com/nishantrana1982/oneonone/internal/notify"
	"github.com/nishantrana1982/oneonone/internal/speech"
	"github.com/nishantrana1982/oneonone/internal/storage"
)

// Config holds configuration for the meeting service.
type Config struct {
	DBPath  string
	BlobDir string

	// Speech/LLM analysis service
	SpeechBaseURL string
	SpeechAPIKey  string

	// SMTP delivery; empty host disables email
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	// Default organizational email domain; overridable via settings
	OrgDomain string
}

// Service orchestrates all meeting, schedule, todo and recording operations.
type Service struct {
	config      Config
	store       Storage
	blob        BlobStore
	transcriber Transcriber
	analyzer    Analyzer
	mailer      Mailer
	settings    *SettingsCache

	now   func() time.Time
	async func(func())
}

// ServiceDeps holds dependencies for constructing a Service.
type ServiceDeps struct {
	Config      Config
	Store       Storage
	Blob        BlobStore
	Transcriber Transcriber
	Analyzer    Analyzer
	Mailer      Mailer

	// Now and Async override the clock and goroutine launcher (for testing).
	Now   func() time.Time
	Async func(func())
}

// NewService creates a service with SQLite storage, local blob storage and
// the production speech client.
func NewService(cfg Config) (*Service, error) {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	blobStore, err := blob.NewStore(cfg.BlobDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	speechClient := speech.NewClient(cfg.SpeechBaseURL, cfg.SpeechAPIKey)

	var mailer Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	} else {
		log.Printf("Warning: SMTP not configured, email notifications disabled")
	}

	return NewServiceWithDeps(ServiceDeps{
		Config:      cfg,
		Store:       store,
		Blob:        blobStore,
		Transcriber: speechClient,
		Analyzer:    speechClient,
		Mailer:      mailer,
	}), nil
}

// NewServiceWithDeps creates a service with explicit dependencies (for testing).
func NewServiceWithDeps(deps ServiceDeps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	async := deps.Async
	if async == nil {
		async = func(fn func()) { go fn() }
	}

	return &Service{
		config:      deps.Config,
		store:       deps.Store,
		blob:        deps.Blob,
		transcriber: deps.Transcriber,
		analyzer:    deps.Analyzer,
		mailer:      deps.Mailer,
		settings:    NewSettingsCache(deps.Store, 0),
		now:         now,
		async:       async,
	}
}

// Close releases all resources.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// UserByEmail resolves an authenticated email to a user.
func (s *Service) UserByEmail(email string) (*User, error) {
	record, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

// ListUsers lists users, optionally filtered by role.
func (s *Service) ListUsers(role string) ([]*User, error) {
	records, err := s.store.ListUsers(role)
	if err != nil {
		return nil, err
	}

	users := make([]*User, len(records))
	for i, r := range records {
		users[i] = userFromRecord(r)
	}

	return users, nil
}

// OrgDomain returns the organizational email domain, from settings with the
// configured default as fallback.
func (s *Service) OrgDomain() string {
	return s.settings.GetDefault(SettingOrgDomain, s.config.OrgDomain)
}

// GetSetting reads a setting through the cache.
func (s *Service) GetSetting(key string) (string, error) {
	return s.settings.Get(key)
}

// Settings lists all stored settings. Admin only.
func (s *Service) Settings(actor *User) (map[string]string, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListSettings()
}

// UpdateSetting stores a setting and invalidates its cache entry.
func (s *Service) UpdateSetting(actor *User, key, value string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: setting key is required", ErrValidation)
	}

	if err := s.store.PutSetting(key, value); err != nil {
		return err
	}
	s.settings.Invalidate(key)

	s.audit(actor.ID, "setting.update", "setting", key, value)
	return nil
}

// Stats returns row counts per entity, for the status command.
func (s *Service) Stats() (map[string]int, error) {
	return s.store.CountByEntity()
}

// audit appends an audit log entry. Failures are logged and swallowed so
// auditing can never break primary functionality.
func (s *Service) audit(actorID, action, entityType, entityID, detail string) {
	err := s.store.AppendAudit(&storage.AuditRecord{
		ID:         storage.GenerateID(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		log.Printf("Warning: audit write failed: %v", err)
	}
}

// sendMail delivers a notification best-effort: failures are logged, primary
// operations succeed regardless.
func (s *Service) sendMail(to []string, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(to, subject, body); err != nil {
		log.Printf("Warning: email notification failed: %v", err)
	}
}

// Role gates

func requireReporter(actor *User) error {
	if actor == nil || (actor.Role != RoleReporter && actor.Role != RoleSuperAdmin) {
		return fmt.Errorf("%w: reporter role required", ErrForbidden)
	}
	return nil
}

func requireAdmin(actor *User) error {
	if actor == nil || actor.Role != RoleSuperAdmin {
		return fmt.Errorf("%w: super admin role required", ErrForbidden)
	}
	return nil
}
