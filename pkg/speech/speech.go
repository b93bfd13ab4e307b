// Package speech holds the voice collaborators: transcription of user audio
// and synthesis of spoken answers.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	// MaxTextLength is the most characters one synthesis call accepts
	MaxTextLength = 4096
	// DefaultChunkSize leaves headroom below MaxTextLength
	DefaultChunkSize = 4000
	WordsPerMinute   = 150

	DefaultVoice = "alloy"
	DefaultModel = "tts-1"
)

var (
	ErrEmptyText     = errors.New("text cannot be empty")
	ErrTextTooLong   = fmt.Errorf("text exceeds %d characters", MaxTextLength)
	ErrUnknownVoice  = errors.New("unknown voice")
	ErrEmptyAudio    = errors.New("no audio received")
	ErrNotConfigured = errors.New("speech service not configured")
)

type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Voices lists the synthesis voices the service accepts
var Voices = []Voice{
	{ID: "alloy", Name: "Alloy", Description: "Neutral, balanced voice"},
	{ID: "echo", Name: "Echo", Description: "Male, clear voice"},
	{ID: "fable", Name: "Fable", Description: "British accent, expressive"},
	{ID: "onyx", Name: "Onyx", Description: "Deep male voice"},
	{ID: "nova", Name: "Nova", Description: "Female, energetic"},
	{ID: "shimmer", Name: "Shimmer", Description: "Female, warm and soft"},
}

func IsKnownVoice(id string) bool {
	for _, v := range Voices {
		if v.ID == id {
			return true
		}
	}
	return false
}

type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcriber turns recorded audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string, language string) (*Transcript, error)
}

// Synthesizer renders text as mp3 audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice string, model string) ([]byte, error)
}

// ValidateText checks the length limits of a single synthesis call
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if len([]rune(text)) > MaxTextLength {
		return fmt.Errorf("%w (got %d)", ErrTextTooLong, len([]rune(text)))
	}
	return nil
}

// EstimateDuration returns the spoken length of text in seconds at 150 wpm
func EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	return float64(words) / WordsPerMinute * 60
}

// SplitForSpeech groups sentences into chunks shorter than chunkSize.
// A single sentence longer than chunkSize becomes its own chunk.
func SplitForSpeech(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range splitSentences(text) {
		if current.Len()+len(sentence) < chunkSize {
			current.WriteString(sentence)
			current.WriteString(" ")
			continue
		}
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
		}
		current.Reset()
		current.WriteString(sentence)
		current.WriteString(" ")
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

// splitSentences breaks after '.', '!' or '?' when whitespace follows
func splitSentences(text string) []string {
	var out []string
	runes := []rune(strings.TrimSpace(text))
	start := 0
	for i := 0; i < len(runes); i++ {
		if !strings.ContainsRune(".!?", runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		out = append(out, string(runes[start:i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}
