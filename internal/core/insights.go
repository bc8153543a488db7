package core

import "fmt"

// Insights aggregates meeting health statistics. Reporters see their own
// scope, super admins the whole organization including the per-department
// breakdown. Employees have no insights surface.
func (s *Service) Insights(actor *User) (*Insights, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}

	reporterID := actor.ID
	if actor.Role == RoleSuperAdmin {
		reporterID = ""
	}

	meetings, err := s.store.CountMeetingsByStatus(reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to count meetings: %w", err)
	}

	createdByID := actor.ID
	if actor.Role == RoleSuperAdmin {
		createdByID = ""
	}
	todos, err := s.store.CountTodosByStatus(createdByID)
	if err != nil {
		return nil, fmt.Errorf("failed to count todos: %w", err)
	}

	avgQuality, err := s.store.AverageQualityScore(RecordingCompleted, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to average quality: %w", err)
	}

	sentiment, err := s.store.SentimentDistribution(RecordingCompleted, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sentiment: %w", err)
	}

	insights := &Insights{
		MeetingsByStatus:    meetings,
		TodosByStatus:       todos,
		AverageQualityScore: avgQuality,
		SentimentBreakdown:  sentiment,
	}

	if actor.Role == RoleSuperAdmin {
		byDept, err := s.store.CountMeetingsByDepartment()
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate departments: %w", err)
		}
		insights.MeetingsByDepartment = byDept
	}

	return insights, nil
}
