package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-shopping-be/pkg/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Synthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nova", req["voice"])
		assert.Equal(t, "tts-1", req["model"])
		assert.Equal(t, "mp3", req["response_format"])
		assert.Equal(t, "Found 2 products.", req["input"])

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3fake"))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "")
	audio, err := c.Synthesize(context.Background(), "Found 2 products.", "nova", "")

	require.NoError(t, err)
	assert.Equal(t, []byte("ID3fake"), audio)
}

func TestClient_SynthesizeRejectsBadInput(t *testing.T) {
	c := NewClient("test-key", "http://127.0.0.1:0", "")

	_, err := c.Synthesize(context.Background(), "", "", "")
	assert.ErrorIs(t, err, speech.ErrEmptyText)

	_, err = c.Synthesize(context.Background(), strings.Repeat("x", speech.MaxTextLength+1), "", "")
	assert.ErrorIs(t, err, speech.ErrTextTooLong)

	_, err = c.Synthesize(context.Background(), "hi", "robot", "")
	assert.ErrorIs(t, err, speech.ErrUnknownVoice)
}

func TestClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		assert.Equal(t, "json", r.FormValue("response_format"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "clip.webm", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("RIFFaudio"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": " organic shampoo under 20 dollars "}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL, "")
	tr, err := c.Transcribe(context.Background(), bytes.NewReader([]byte("RIFFaudio")), "clip.webm", "en")

	require.NoError(t, err)
	assert.Equal(t, "organic shampoo under 20 dollars", tr.Text)
	assert.Equal(t, "en", tr.Language)
}

func TestClient_TranscribeEmptyAudio(t *testing.T) {
	c := NewClient("test-key", "http://127.0.0.1:0", "")

	_, err := c.Transcribe(context.Background(), bytes.NewReader(nil), "", "en")

	assert.ErrorIs(t, err, speech.ErrEmptyAudio)
}
