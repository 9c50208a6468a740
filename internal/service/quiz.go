package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"studydesk/internal/model"

	"github.com/google/uuid"
)

type GenerateQuizRequest struct {
	Title         string `json:"title" validate:"required,max=120"`
	NoteContent   string `json:"note_content" validate:"required,min=40"`
	QuestionCount int    `json:"question_count" validate:"omitempty,min=1,max=20"`
}

type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

type Quiz struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizService turns a user's note content into a multiple-choice quiz. Every
// model call goes through the quota gate; the service never talks to the
// generator directly outside of it.
type QuizService struct {
	gate      *QuotaGate
	generator Generator
	notifier  *NotificationLog
	logger    *slog.Logger
}

func NewQuizService(gate *QuotaGate, generator Generator, notifier *NotificationLog, logger *slog.Logger) *QuizService {
	return &QuizService{
		gate:      gate,
		generator: generator,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *QuizService) Generate(ctx context.Context, userID uuid.UUID, req GenerateQuizRequest) (Quiz, error) {
	count := req.QuestionCount
	if count == 0 {
		count = 5
	}

	prompt := buildQuizPrompt(req.NoteContent, count)

	raw, err := s.gate.GuardedCall(ctx, userID, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return Quiz{}, err
	}

	questions, err := parseQuizResponse(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to parse quiz response", "user_id", userID, "error", err)
		return Quiz{}, fmt.Errorf("failed to parse generated quiz: %w", err)
	}

	s.logger.InfoContext(ctx, "Quiz generated", "user_id", userID, "questions", len(questions))

	s.notifier.TryNotify(ctx, userID, model.NotificationQuizGenerated,
		"Quiz ready",
		fmt.Sprintf("Your quiz %q with %d questions is ready.", req.Title, len(questions)))

	return Quiz{Title: req.Title, Questions: questions}, nil
}

func buildQuizPrompt(noteContent string, count int) string {
	return fmt.Sprintf(`Create a multiple-choice quiz with exactly %d questions from the study notes below.
Respond with a JSON array only, no prose. Each element must have the shape
{"prompt": string, "choices": [string, string, string, string], "answer": index-into-choices}.

Notes:
%s`, count, noteContent)
}

// parseQuizResponse tolerates the model wrapping its JSON in a code fence.
func parseQuizResponse(raw string) ([]QuizQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}
	for i, q := range questions {
		if q.Answer < 0 || q.Answer >= len(q.Choices) {
			return nil, fmt.Errorf("question %d has answer index %d out of range", i, q.Answer)
		}
	}
	return questions, nil
}
