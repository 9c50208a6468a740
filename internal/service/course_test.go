package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"studydesk/internal/model"
	"studydesk/internal/service"
	"studydesk/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCourseService(repo *MockRepository, generator *MockGenerator, store *MockStorage) *service.CourseService {
	logger := testLogger()
	notifier := service.NewNotificationLog(repo, logger)
	return service.NewCourseService(newTestGate(repo), generator, store, notifier, logger)
}

func TestCourseService_Upload(t *testing.T) {
	userID := uuid.New()
	content := strings.NewReader("lecture notes")

	store := new(MockStorage)
	store.On("Store", mock.Anything, userID, "week1.txt", content, "text/plain").
		Return("key/week1.txt", nil)

	courses := newTestCourseService(new(MockRepository), new(MockGenerator), store)

	key, err := courses.Upload(context.Background(), userID, "week1.txt", content, "text/plain")

	require.NoError(t, err)
	assert.Equal(t, "key/week1.txt", key)
	store.AssertExpectations(t)
}

func TestCourseService_Process(t *testing.T) {
	userID := uuid.New()

	t.Run("summarizes the stored document", func(t *testing.T) {
		repo := new(MockRepository)
		expectAdmitted(repo, userID)
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
			return n.Type == model.NotificationCourseProcessed && n.UserID == userID
		})).Return(nil).Once()

		store := new(MockStorage)
		store.On("Retrieve", mock.Anything, "key/week1.txt").
			Return(io.NopCloser(strings.NewReader("photosynthesis basics")), nil)

		generator := new(MockGenerator)
		generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, "photosynthesis basics")
		})).Return("1. Light reactions\n2. Calvin cycle", nil)

		courses := newTestCourseService(repo, generator, store)

		outline, err := courses.Process(context.Background(), userID, "key/week1.txt")

		require.NoError(t, err)
		assert.Contains(t, outline, "Calvin cycle")
		generator.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("missing document fails before the quota check", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStorage)
		store.On("Retrieve", mock.Anything, "key/missing.txt").Return(nil, storage.ErrNotFound)
		generator := new(MockGenerator)

		courses := newTestCourseService(repo, generator, store)

		_, err := courses.Process(context.Background(), userID, "key/missing.txt")

		require.ErrorIs(t, err, storage.ErrNotFound)
		repo.AssertNotCalled(t, "GetDailyUsageCount", mock.Anything, mock.Anything, mock.Anything)
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("empty document fails before the quota check", func(t *testing.T) {
		repo := new(MockRepository)
		store := new(MockStorage)
		store.On("Retrieve", mock.Anything, "key/empty.txt").
			Return(io.NopCloser(strings.NewReader("")), nil)
		generator := new(MockGenerator)

		courses := newTestCourseService(repo, generator, store)

		_, err := courses.Process(context.Background(), userID, "key/empty.txt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}
