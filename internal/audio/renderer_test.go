package audio

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Speech(ctx context.Context, text string) ([]byte, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestRender_CachesProviderAudio(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Speech", mock.Anything, "lucid").Return([]byte("mp3"), nil).Once()

	r := NewRenderer(t.TempDir(), "alloy", provider, nil)

	data, err := r.Render(context.Background(), " lucid ")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), data)

	data, err = r.Render(context.Background(), "lucid")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), data)

	provider.AssertExpectations(t)
	_, err = os.Stat(r.CachePath("lucid"))
	assert.NoError(t, err)
}

func TestRender_FailuresAreNotCached(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Speech", mock.Anything, "terse").Return(nil, errors.New("quota")).Once()
	provider.On("Speech", mock.Anything, "terse").Return([]byte("ok"), nil).Once()

	r := NewRenderer(t.TempDir(), "alloy", provider, nil)

	_, err := r.Render(context.Background(), "terse")
	require.Error(t, err)

	data, err := r.Render(context.Background(), "terse")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestRender_WithoutProvider(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir, "alloy", nil, nil)

	_, err := r.Render(context.Background(), "vivid")
	assert.ErrorIs(t, err, ErrUnavailable)

	require.NoError(t, os.WriteFile(r.CachePath("vivid"), []byte("cached"), 0o644))
	data, err := r.Render(context.Background(), "vivid")
	require.NoError(t, err)
	assert.Equal(t, []byte("cached"), data)

	_, err = r.Render(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCachePath_DependsOnVoice(t *testing.T) {
	a := NewRenderer("cache", "alloy", nil, nil)
	b := NewRenderer("cache", "nova", nil, nil)
	assert.NotEqual(t, a.CachePath("word"), b.CachePath("word"))
	assert.Equal(t, a.CachePath("word"), a.CachePath(" word "))
}
