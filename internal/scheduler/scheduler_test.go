package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/example/vocadrill/internal/spaced_repetition"
	"github.com/example/vocadrill/pkg/models"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context) (models.Table, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Table), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendReminder(ctx context.Context, r Reminder) error {
	return m.Called(ctx, r).Error(0)
}

func fixedLeitner() *spaced_repetition.Leitner {
	l := spaced_repetition.NewLeitner(nil)
	l.Clock = func() time.Time { return time.Date(2024, time.May, 1, 8, 0, 0, 0, time.Local) }
	return l
}

func table() models.Table {
	future := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	return models.Table{
		{ID: 3, Word: "candid", Level: 1},
		{ID: 1, Word: "ameliorate", Level: 2, MistakeCount: 2},
		{ID: 2, Word: "bolster", Level: 1, Box: 2, NextReview: future},
	}
}

func TestRunManualCheck_NotifiesDueItems(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(table(), nil)
	notifier := new(MockNotifier)
	notifier.On("SendReminder", mock.Anything, Reminder{
		Due: 2, Mistakes: 1, Goal: 10, Preview: []string{"ameliorate", "candid"},
	}).Return(nil)

	s := New(loader, fixedLeitner(), models.DefaultSessionConfig(), notifier, "", nil)
	r, err := s.RunManualCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Due)
	notifier.AssertExpectations(t)
}

func TestRunManualCheck_NothingDue(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(table()[2:], nil)
	notifier := new(MockNotifier)

	s := New(loader, fixedLeitner(), models.DefaultSessionConfig(), notifier, "", nil)
	r, err := s.RunManualCheck(context.Background())
	require.NoError(t, err)
	assert.Zero(t, r.Due)
	notifier.AssertNotCalled(t, "SendReminder", mock.Anything, mock.Anything)
}

func TestRunManualCheck_Errors(t *testing.T) {
	loader := new(MockLoader)
	loader.On("Load", mock.Anything).Return(nil, errors.New("locked")).Once()
	loader.On("Load", mock.Anything).Return(table(), nil)
	notifier := new(MockNotifier)
	notifier.On("SendReminder", mock.Anything, mock.Anything).Return(errors.New("offline"))

	s := New(loader, fixedLeitner(), models.DefaultSessionConfig(), notifier, "", nil)
	_, err := s.RunManualCheck(context.Background())
	assert.ErrorContains(t, err, "locked")

	_, err = s.RunManualCheck(context.Background())
	assert.ErrorContains(t, err, "offline")
}

func TestStart_SchedulesDailyJob(t *testing.T) {
	s := New(new(MockLoader), fixedLeitner(), models.DefaultSessionConfig(), new(MockNotifier), "23:59", nil)
	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	next := s.NextRun()
	assert.True(t, next.After(time.Now()))
	assert.Equal(t, 23, next.Hour())
	assert.Equal(t, 59, next.Minute())
}

func TestStart_RejectsBadTime(t *testing.T) {
	s := New(new(MockLoader), fixedLeitner(), models.DefaultSessionConfig(), new(MockNotifier), "25:99", nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	require.NoError(t, LogNotifier{Logger: logger}.SendReminder(context.Background(), Reminder{Due: 4}))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, 4, hook.LastEntry().Data["due"])
}
