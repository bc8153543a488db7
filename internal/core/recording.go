package core

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

// recordingRank orders the success path of the pipeline. FAILED sits
// outside the rank: it is reachable from any non-terminal state.
var recordingRank = map[string]int{
	RecordingUploading:    0,
	RecordingUploaded:     1,
	RecordingTranscribing: 2,
	RecordingAnalyzing:    3,
	RecordingCompleted:    4,
}

// ValidRecordingTransition reports whether a status move is legal: one step
// forward along the pipeline, or into FAILED from any non-terminal state.
func ValidRecordingTransition(from, to string) bool {
	if from == RecordingCompleted || from == RecordingFailed {
		return false
	}
	if to == RecordingFailed {
		_, known := recordingRank[from]
		return known
	}

	fromRank, okFrom := recordingRank[from]
	toRank, okTo := recordingRank[to]
	return okFrom && okTo && toRank == fromRank+1
}

// UploadRecordingInput carries an audio upload.
type UploadRecordingInput struct {
	MeetingID       string
	FileName        string
	DurationSeconds int
	Audio           io.Reader
}

// UploadRecording stores the audio artifact for a meeting and starts the
// processing pipeline. The returned recording is in UPLOADED state; the
// caller observes further progress by polling RecordingStatus.
func (s *Service) UploadRecording(actor *User, in UploadRecordingInput) (*Recording, error) {
	if err := requireReporter(actor); err != nil {
		return nil, err
	}

	meetingRecord, err := s.store.GetMeeting(in.MeetingID)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleSuperAdmin && meetingRecord.ReporterID != actor.ID {
		return nil, fmt.Errorf("%w: meeting belongs to another reporter", ErrForbidden)
	}

	if _, err := s.store.GetRecordingByMeeting(in.MeetingID); err == nil {
		return nil, fmt.Errorf("%w: meeting already has a recording", ErrConflict)
	}

	if in.DurationSeconds < 0 {
		return nil, fmt.Errorf("%w: duration must be non-negative", ErrValidation)
	}
	if in.DurationSeconds > MaxRecordingSeconds {
		return nil, fmt.Errorf("%w: recording exceeds the %d second cap", ErrValidation, MaxRecordingSeconds)
	}
	if in.FileName == "" {
		in.FileName = "recording.wav"
	}

	now := s.now().UTC()
	record := &storage.RecordingRecord{
		ID:              storage.GenerateID(),
		MeetingID:       in.MeetingID,
		Status:          RecordingUploading,
		DurationSeconds: in.DurationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveRecording(record); err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	path, _, err := s.blob.Save(in.FileName, in.Audio)
	if err != nil {
		s.failRecording(record, fmt.Sprintf("upload failed: %v", err))
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}
	record.BlobPath = path

	if err := s.advanceRecording(record, RecordingUploaded); err != nil {
		return nil, err
	}

	s.audit(actor.ID, "recording.upload", "recording", record.ID, in.FileName)

	id := record.ID
	s.async(func() { s.processRecording(context.Background(), id) })

	return recordingFromRecord(record), nil
}

// processRecording runs the transcription and analysis stages. It is
// decoupled from the upload request: failures land in the recording's
// errorMessage and FAILED state, never in an HTTP response.
func (s *Service) processRecording(ctx context.Context, id string) {
	record, err := s.store.GetRecording(id)
	if err != nil {
		log.Printf("Warning: recording %s disappeared before processing: %v", id, err)
		return
	}

	if err := s.advanceRecording(record, RecordingTranscribing); err != nil {
		log.Printf("Warning: recording %s: %v", id, err)
		return
	}

	audio, err := s.blob.Open(record.BlobPath)
	if err != nil {
		s.failRecording(record, fmt.Sprintf("open audio: %v", err))
		return
	}

	language := s.settings.GetDefault(SettingSpeechLanguage, "")
	transcript, err := s.transcriber.Transcribe(ctx, audio, record.BlobPath, language)
	audio.Close()
	if err != nil {
		s.failRecording(record, fmt.Sprintf("transcription failed: %v", err))
		return
	}

	if err := s.advanceRecording(record, RecordingAnalyzing); err != nil {
		log.Printf("Warning: recording %s: %v", id, err)
		return
	}

	analysis, err := s.analyzer.Analyze(ctx, transcript.Text)
	if err != nil {
		s.failRecording(record, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	// Populate every derived field before COMPLETED becomes visible.
	record.Transcript = transcript.Text
	record.Summary = analysis.Summary
	record.KeyPoints = analysis.KeyPoints
	record.SentimentLabel = analysis.SentimentLabel
	record.SentimentScore = analysis.SentimentScore
	record.QualityScore = analysis.QualityScore
	if record.DurationSeconds == 0 {
		record.DurationSeconds = transcript.DurationSeconds
	}

	if err := s.advanceRecording(record, RecordingCompleted); err != nil {
		log.Printf("Warning: recording %s: %v", id, err)
		return
	}

	for _, item := range analysis.SuggestedTodos {
		suggestion := &storage.SuggestedTodoRecord{
			ID:           storage.GenerateID(),
			RecordingID:  record.ID,
			Title:        item.Title,
			AssigneeHint: item.AssigneeHint,
		}
		if err := s.store.SaveSuggestedTodo(suggestion); err != nil {
			log.Printf("Warning: failed to save suggested todo: %v", err)
		}
	}
}

// RecordingStatus returns the poll target payload for a recording.
func (s *Service) RecordingStatus(actor *User, id string) (*RecordingStatus, error) {
	record, err := s.visibleRecording(actor, id)
	if err != nil {
		return nil, err
	}

	terminal := record.Status == RecordingCompleted || record.Status == RecordingFailed
	return &RecordingStatus{
		ID:                 record.ID,
		Status:             record.Status,
		ErrorMessage:       record.ErrorMessage,
		Terminal:           terminal,
		PollIntervalMillis: int(StatusPollInterval.Milliseconds()),
	}, nil
}

// GetRecording returns the full recording plus its suggested todos.
func (s *Service) GetRecording(actor *User, id string) (*Recording, []*SuggestedTodo, error) {
	record, err := s.visibleRecording(actor, id)
	if err != nil {
		return nil, nil, err
	}

	suggestionRecords, err := s.store.ListSuggestedTodos(id)
	if err != nil {
		return nil, nil, err
	}

	suggestions := make([]*SuggestedTodo, len(suggestionRecords))
	for i, r := range suggestionRecords {
		suggestions[i] = suggestedFromRecord(r)
	}

	return recordingFromRecord(record), suggestions, nil
}

// DeleteRecording discards a recording and all partial results. This is the
// only recovery path from FAILED: delete and re-record from scratch.
func (s *Service) DeleteRecording(actor *User, id string) error {
	if err := requireReporter(actor); err != nil {
		return err
	}

	record, err := s.store.GetRecording(id)
	if err != nil {
		return err
	}

	if record.BlobPath != "" {
		if err := s.blob.Delete(record.BlobPath); err != nil {
			log.Printf("Warning: failed to delete audio blob %s: %v", record.BlobPath, err)
		}
	}

	if err := s.store.DeleteRecording(id); err != nil {
		return err
	}

	s.audit(actor.ID, "recording.delete", "recording", id, record.Status)
	return nil
}

// advanceRecording moves a recording one step forward and persists it. The
// write is conditional on the row still existing, so deleting a recording
// mid-pipeline stops further writes instead of resurrecting the row.
func (s *Service) advanceRecording(record *storage.RecordingRecord, to string) error {
	if !ValidRecordingTransition(record.Status, to) {
		return fmt.Errorf("invalid recording transition %s -> %s", record.Status, to)
	}

	record.Status = to
	record.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateRecording(record); err != nil {
		return fmt.Errorf("failed to save recording: %w", err)
	}

	return nil
}

// failRecording captures an error message and parks the recording in FAILED.
func (s *Service) failRecording(record *storage.RecordingRecord, message string) {
	if !ValidRecordingTransition(record.Status, RecordingFailed) {
		log.Printf("Warning: recording %s cannot fail from %s", record.ID, record.Status)
		return
	}

	record.Status = RecordingFailed
	record.ErrorMessage = message
	record.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateRecording(record); err != nil {
		log.Printf("Warning: failed to persist FAILED state for %s: %v", record.ID, err)
	}
}

// visibleRecording loads a recording and checks meeting-level visibility.
func (s *Service) visibleRecording(actor *User, id string) (*storage.RecordingRecord, error) {
	record, err := s.store.GetRecording(id)
	if err != nil {
		return nil, err
	}

	meetingRecord, err := s.store.GetMeeting(record.MeetingID)
	if err != nil {
		return nil, err
	}
	if !canSeeMeeting(actor, meetingFromRecord(meetingRecord)) {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	return record, nil
}
