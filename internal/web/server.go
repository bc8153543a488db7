package web

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nishantrana1982/oneonone/internal/core"
	"github.com/nishantrana1982/oneonone/internal/storage"
)

// Service is the application surface the web layer depends on.
// Implementations: core.Service
type Service interface {
	UserByEmail(email string) (*core.User, error)
	ListUsers(role string) ([]*core.User, error)
	OrgDomain() string

	CreateMeeting(actor *core.User, in core.CreateMeetingInput) (*core.Meeting, error)
	GetMeeting(actor *core.User, id string) (*core.Meeting, error)
	ListMeetings(actor *core.User, f storage.MeetingFilter) ([]*core.Meeting, error)
	UpdateMeeting(actor *core.User, id string, in core.UpdateMeetingInput) (*core.Meeting, error)
	AddAttachment(actor *core.User, meetingID, fileName string, r io.Reader) (*core.Attachment, error)
	ListAttachments(actor *core.User, meetingID string) ([]*core.Attachment, error)

	CreateTodo(actor *core.User, in core.CreateTodoInput) (*core.Todo, error)
	ListTodos(actor *core.User, f storage.TodoFilter) ([]*core.Todo, error)
	UpdateTodo(actor *core.User, id string, in core.UpdateTodoInput) (*core.Todo, error)
	DeleteTodo(actor *core.User, id string) error
	PromoteSuggestedTodo(actor *core.User, suggestionID, assignedToID string, dueDate *time.Time) (*core.Todo, error)

	CreateSchedule(actor *core.User, employeeID string, rule core.Rule) (*core.Schedule, error)
	ListSchedules(actor *core.User) ([]*core.Schedule, error)
	AvailableEmployees(actor *core.User) ([]*core.User, error)
	EditSchedule(actor *core.User, id string, rule core.Rule) (*core.Schedule, error)
	PauseSchedule(actor *core.User, id string, cancelFuture bool) (*core.ScheduleResult, error)
	ResumeSchedule(actor *core.User, id string) (*core.Schedule, error)
	DeleteSchedule(actor *core.User, id string) (*core.ScheduleResult, error)

	UploadRecording(actor *core.User, in core.UploadRecordingInput) (*core.Recording, error)
	RecordingStatus(actor *core.User, id string) (*core.RecordingStatus, error)
	GetRecording(actor *core.User, id string) (*core.Recording, []*core.SuggestedTodo, error)
	DeleteRecording(actor *core.User, id string) error

	Insights(actor *core.User) (*core.Insights, error)
	Settings(actor *core.User) (map[string]string, error)
	UpdateSetting(actor *core.User, key, value string) error
}

// Server is the oneonone web server
type Server struct {
	svc    Service
	router *gin.Engine
}

// NewServer creates a new web server
func NewServer(svc Service) *Server {
	router := gin.Default()

	s := &Server{
		svc:    svc,
		router: router,
	}

	router.GET("/api/health", s.handleHealth)

	api := router.Group("/api")
	api.Use(s.identify)
	{
		api.GET("/meetings", s.handleListMeetings)
		api.POST("/meetings", s.handleCreateMeeting)
		api.GET("/meetings/:id", s.handleGetMeeting)
		api.PUT("/meetings/:id", s.handleUpdateMeeting)
		api.GET("/meetings/:id/attachments", s.handleListAttachments)
		api.POST("/meetings/:id/attachments", s.handleAddAttachment)
		api.POST("/meetings/:id/recording", s.handleUploadRecording)

		api.GET("/todos", s.handleListTodos)
		api.POST("/todos", s.handleCreateTodo)
		api.PUT("/todos/:id", s.handleUpdateTodo)
		api.DELETE("/todos/:id", s.handleDeleteTodo)
		api.POST("/todos/promote", s.handlePromoteTodo)

		api.GET("/schedules", s.handleListSchedules)
		api.POST("/schedules", s.handleCreateSchedule)
		api.PUT("/schedules/:id", s.handleEditSchedule)
		api.POST("/schedules/:id/pause", s.handlePauseSchedule)
		api.POST("/schedules/:id/resume", s.handleResumeSchedule)
		api.DELETE("/schedules/:id", s.handleDeleteSchedule)
		api.GET("/schedules/available-employees", s.handleAvailableEmployees)

		api.GET("/recordings/:id", s.handleGetRecording)
		api.GET("/recordings/:id/status", s.handleRecordingStatus)
		api.DELETE("/recordings/:id", s.handleDeleteRecording)

		api.GET("/insights", s.handleInsights)
		api.GET("/settings", s.handleListSettings)
		api.PUT("/settings/:key", s.handleUpdateSetting)
	}

	return s
}

// Run starts the web server
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  "ok",
	})
}

// respondError maps core sentinel errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrConflict):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
