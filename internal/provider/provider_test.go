package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWhisper_RequiresKey(t *testing.T) {
	_, err := NewWhisper("")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "speech.webm", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"  Meeting at ten, then gym.  "}`))
	}))
	defer srv.Close()

	w, err := NewWhisper("test-key")
	require.NoError(t, err)
	w.baseURL = srv.URL

	text, err := w.Transcribe(context.Background(), []byte("fake audio"), "audio/webm", "")
	require.NoError(t, err)
	assert.Equal(t, "Meeting at ten, then gym.", text)
}

func TestWhisperTranscribe_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad audio"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	w, err := NewWhisper("test-key")
	require.NoError(t, err)
	w.baseURL = srv.URL

	_, err = w.Transcribe(context.Background(), []byte("x"), "audio/webm", "a.webm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSplitImpulse(t *testing.T) {
	title, body, err := SplitImpulse("Stay on track — ten minutes of budgeting keeps the overview.")
	require.NoError(t, err)
	assert.Equal(t, "Stay on track", title)
	assert.Equal(t, "ten minutes of budgeting keeps the overview.", body)

	title, body, err = SplitImpulse("No separator at all")
	require.NoError(t, err)
	assert.Equal(t, "No separator at all", title)
	assert.Equal(t, "One small step. Start now.", body)

	title, body, err = SplitImpulse("")
	require.NoError(t, err)
	assert.Equal(t, "Daily impulse", title)
	assert.Equal(t, "One small step. Start now.", body)
}
