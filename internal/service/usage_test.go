package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"studydesk/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestToday(t *testing.T) {
	now := time.Now()
	today := service.Today()

	assert.Equal(t, now.Year(), today.Year())
	assert.Equal(t, now.Month(), today.Month())
	assert.Equal(t, now.Day(), today.Day())
	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Minute())
	assert.Zero(t, today.Second())
	assert.Zero(t, today.Nanosecond())
	assert.Equal(t, now.Location(), today.Location())
}

func TestUsageCounter_CountFor(t *testing.T) {
	userID := uuid.New()
	day := service.Today()

	t.Run("passes through the stored count", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDailyUsageCount", mock.Anything, userID, day).Return(3, nil)
		counter := service.NewUsageCounter(repo, testLogger())

		count, err := counter.CountFor(context.Background(), userID, day)

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDailyUsageCount", mock.Anything, userID, day).Return(0, errors.New("timeout"))
		counter := service.NewUsageCounter(repo, testLogger())

		_, err := counter.CountFor(context.Background(), userID, day)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read daily usage")
	})
}

func TestUsageCounter_IncrementFor(t *testing.T) {
	userID := uuid.New()
	day := service.Today()

	repo := new(MockRepository)
	repo.On("IncrementDailyUsage", mock.Anything, userID, day).Return(1, nil)
	counter := service.NewUsageCounter(repo, testLogger())

	count, err := counter.IncrementFor(context.Background(), userID, day)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
}
