package core

import (
	"errors"
	"testing"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

func TestInsightsScoping(t *testing.T) {
	svc, deps := newTestService()

	seedMeeting(deps.store, "m-1", deps.employee.ID, deps.reporter.ID, "", MeetingCompleted, testNow)
	seedMeeting(deps.store, "m-2", deps.employee.ID, deps.reporter.ID, "", MeetingScheduled, testNow)
	seedMeeting(deps.store, "m-3", "someone", deps.other.ID, "", MeetingCompleted, testNow)

	deps.store.SaveRecording(&storage.RecordingRecord{
		ID: "r-1", MeetingID: "m-1", Status: RecordingCompleted,
		SentimentLabel: "positive", QualityScore: 80,
	})
	deps.store.SaveRecording(&storage.RecordingRecord{
		ID: "r-3", MeetingID: "m-3", Status: RecordingCompleted,
		SentimentLabel: "negative", QualityScore: 40,
	})

	// Reporter insights cover only their own meetings.
	insights, err := svc.Insights(deps.reporter)
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if insights.MeetingsByStatus[MeetingCompleted] != 1 || insights.MeetingsByStatus[MeetingScheduled] != 1 {
		t.Errorf("MeetingsByStatus = %+v, want 1 completed and 1 scheduled", insights.MeetingsByStatus)
	}
	if insights.AverageQualityScore != 80 {
		t.Errorf("AverageQualityScore = %v, want 80", insights.AverageQualityScore)
	}
	if insights.SentimentBreakdown["negative"] != 0 {
		t.Errorf("reporter sees other teams' sentiment: %+v", insights.SentimentBreakdown)
	}
	if insights.MeetingsByDepartment != nil {
		t.Error("department breakdown is admin-only")
	}

	// Admin insights cover the whole organization.
	insights, err = svc.Insights(deps.admin)
	if err != nil {
		t.Fatalf("Insights() error = %v", err)
	}
	if insights.MeetingsByStatus[MeetingCompleted] != 2 {
		t.Errorf("admin MeetingsByStatus = %+v, want 2 completed", insights.MeetingsByStatus)
	}
	if insights.AverageQualityScore != 60 {
		t.Errorf("admin AverageQualityScore = %v, want 60", insights.AverageQualityScore)
	}
	if insights.SentimentBreakdown["positive"] != 1 || insights.SentimentBreakdown["negative"] != 1 {
		t.Errorf("admin SentimentBreakdown = %+v", insights.SentimentBreakdown)
	}
	if insights.MeetingsByDepartment == nil {
		t.Error("admin insights should include the department breakdown")
	}

	// Employees have no insights surface.
	if _, err := svc.Insights(deps.employee); !errors.Is(err, ErrForbidden) {
		t.Errorf("employee Insights() error = %v, want ErrForbidden", err)
	}
}
