package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"studydesk/internal/model"
	"studydesk/internal/storage"

	"github.com/google/uuid"
)

// Course documents larger than this are cut off before prompting; the model's
// context window is the real limit, this just keeps requests bounded.
const maxCourseDocumentBytes = 256 * 1024

// CourseService summarizes an uploaded course document into a study outline.
// The document comes from storage; the summarization call goes through the
// quota gate like every other AI invocation.
type CourseService struct {
	gate      *QuotaGate
	generator Generator
	store     storage.Storage
	notifier  *NotificationLog
	logger    *slog.Logger
}

func NewCourseService(gate *QuotaGate, generator Generator, store storage.Storage, notifier *NotificationLog, logger *slog.Logger) *CourseService {
	return &CourseService{
		gate:      gate,
		generator: generator,
		store:     store,
		notifier:  notifier,
		logger:    logger,
	}
}

// Upload stores a course source document and returns its storage key.
func (s *CourseService) Upload(ctx context.Context, userID uuid.UUID, filename string, content io.Reader, contentType string) (string, error) {
	key, err := s.store.Store(ctx, userID, filename, content, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store course document: %w", err)
	}
	s.logger.InfoContext(ctx, "Course document uploaded", "user_id", userID, "key", key)
	return key, nil
}

// Process reads the stored document and produces a study outline.
func (s *CourseService) Process(ctx context.Context, userID uuid.UUID, documentKey string) (string, error) {
	reader, err := s.store.Retrieve(ctx, documentKey)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve course document: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(io.LimitReader(reader, maxCourseDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read course document: %w", err)
	}
	if len(content) == 0 {
		return "", fmt.Errorf("course document is empty")
	}

	prompt := fmt.Sprintf(`Summarize the course material below into a structured study outline:
sections with short headings, key points per section, and terms worth memorizing.

Material:
%s`, string(content))

	outline, err := s.gate.GuardedCall(ctx, userID, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "Course document processed", "user_id", userID, "key", documentKey)

	s.notifier.TryNotify(ctx, userID, model.NotificationCourseProcessed,
		"Course processed",
		"Your course material has been summarized into a study outline.")

	return outline, nil
}
