package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nishantrana1982/oneonone/internal/core"
	"github.com/nishantrana1982/oneonone/internal/storage"
)

// maxUploadSize bounds multipart bodies (audio, attachments)
const maxUploadSize = 64 << 20 // 64MB

// Meetings

func (s *Server) handleListMeetings(c *gin.Context) {
	var f storage.MeetingFilter
	f.ScheduleID = c.Query("schedule_id")
	f.Status = c.Query("status")
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "from must be RFC 3339",
			})
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "to must be RFC 3339",
			})
			return
		}
		f.To = &t
	}

	meetings, err := s.svc.ListMeetings(actor(c), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"meetings": meetings,
		"count":    len(meetings),
	})
}

func (s *Server) handleCreateMeeting(c *gin.Context) {
	var in core.CreateMeetingInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	meeting, err := s.svc.CreateMeeting(actor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"meeting": meeting,
	})
}

func (s *Server) handleGetMeeting(c *gin.Context) {
	meeting, err := s.svc.GetMeeting(actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"meeting": meeting,
	})
}

func (s *Server) handleUpdateMeeting(c *gin.Context) {
	var in core.UpdateMeetingInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	meeting, err := s.svc.UpdateMeeting(actor(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"meeting": meeting,
	})
}

func (s *Server) handleListAttachments(c *gin.Context) {
	attachments, err := s.svc.ListAttachments(actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"attachments": attachments,
		"count":       len(attachments),
	})
}

func (s *Server) handleAddAttachment(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "file part required",
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	attachment, err := s.svc.AddAttachment(actor(c), c.Param("id"), header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"attachment": attachment,
	})
}

// Recordings

func (s *Server) handleUploadRecording(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	header, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "audio part required",
		})
		return
	}

	duration, _ := strconv.Atoi(c.PostForm("duration_seconds"))

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	recording, err := s.svc.UploadRecording(actor(c), core.UploadRecordingInput{
		MeetingID:       c.Param("id"),
		FileName:        header.Filename,
		DurationSeconds: duration,
		Audio:           file,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":   true,
		"recording": recording,
	})
}

func (s *Server) handleRecordingStatus(c *gin.Context) {
	status, err := s.svc.RecordingStatus(actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
	})
}

func (s *Server) handleGetRecording(c *gin.Context) {
	recording, suggestions, err := s.svc.GetRecording(actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"recording":       recording,
		"suggested_todos": suggestions,
	})
}

func (s *Server) handleDeleteRecording(c *gin.Context) {
	if err := s.svc.DeleteRecording(actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Recording deleted",
	})
}

// Todos

func (s *Server) handleListTodos(c *gin.Context) {
	var f storage.TodoFilter
	f.MeetingID = c.Query("meeting_id")
	f.Status = c.Query("status")
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.Query("offset"))

	todos, err := s.svc.ListTodos(actor(c), f)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"todos":   todos,
		"count":   len(todos),
	})
}

func (s *Server) handleCreateTodo(c *gin.Context) {
	var in core.CreateTodoInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	todo, err := s.svc.CreateTodo(actor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"todo":    todo,
	})
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	var in core.UpdateTodoInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	todo, err := s.svc.UpdateTodo(actor(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"todo":    todo,
	})
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	if err := s.svc.DeleteTodo(actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Todo deleted",
	})
}

func (s *Server) handlePromoteTodo(c *gin.Context) {
	var in struct {
		SuggestionID string     `json:"suggestion_id"`
		AssignedToID string     `json:"assigned_to_id,omitempty"`
		DueDate      *time.Time `json:"due_date,omitempty"`
	}
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	todo, err := s.svc.PromoteSuggestedTodo(actor(c), in.SuggestionID, in.AssignedToID, in.DueDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"todo":    todo,
	})
}

// Schedules

func (s *Server) handleListSchedules(c *gin.Context) {
	schedules, err := s.svc.ListSchedules(actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"schedules": schedules,
		"count":     len(schedules),
	})
}

func (s *Server) handleCreateSchedule(c *gin.Context) {
	var in struct {
		EmployeeID string    `json:"employee_id"`
		Rule       core.Rule `json:"rule"`
	}
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	schedule, err := s.svc.CreateSchedule(actor(c), in.EmployeeID, in.Rule)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"schedule": schedule,
	})
}

func (s *Server) handleEditSchedule(c *gin.Context) {
	var in struct {
		Rule core.Rule `json:"rule"`
	}
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	schedule, err := s.svc.EditSchedule(actor(c), c.Param("id"), in.Rule)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"schedule": schedule,
	})
}

func (s *Server) handlePauseSchedule(c *gin.Context) {
	var in struct {
		CancelFutureMeetings bool `json:"cancel_future_meetings"`
	}
	// Body is optional; an empty body means pause without cancelling.
	if c.Request.ContentLength > 0 {
		if err := c.BindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
	}

	result, err := s.svc.PauseSchedule(actor(c), c.Param("id"), in.CancelFutureMeetings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                 true,
		"schedule":                result.Schedule,
		"cancelled_meeting_count": result.CancelledMeetingCount,
	})
}

func (s *Server) handleResumeSchedule(c *gin.Context) {
	schedule, err := s.svc.ResumeSchedule(actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"schedule": schedule,
	})
}

func (s *Server) handleDeleteSchedule(c *gin.Context) {
	result, err := s.svc.DeleteSchedule(actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                 true,
		"cancelled_meeting_count": result.CancelledMeetingCount,
	})
}

func (s *Server) handleAvailableEmployees(c *gin.Context) {
	users, err := s.svc.AvailableEmployees(actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"employees": users,
		"count":     len(users),
	})
}

// Insights and settings

func (s *Server) handleInsights(c *gin.Context) {
	insights, err := s.svc.Insights(actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"insights": insights,
	})
}

func (s *Server) handleListSettings(c *gin.Context) {
	settings, err := s.svc.Settings(actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": settings,
	})
}

func (s *Server) handleUpdateSetting(c *gin.Context) {
	var in struct {
		Value string `json:"value"`
	}
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if err := s.svc.UpdateSetting(actor(c), c.Param("key"), in.Value); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Setting updated",
	})
}
