package speech

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateText(t *testing.T) {
	assert.ErrorIs(t, ValidateText("   "), ErrEmptyText)
	assert.NoError(t, ValidateText("Found 2 products."))
	assert.NoError(t, ValidateText(strings.Repeat("a", MaxTextLength)))

	err := ValidateText(strings.Repeat("a", MaxTextLength+1))
	assert.True(t, errors.Is(err, ErrTextTooLong))
	assert.Contains(t, err.Error(), "4097")
}

func TestEstimateDuration(t *testing.T) {
	assert.InDelta(t, 0.8, EstimateDuration("Hello world"), 1e-9)
	assert.Equal(t, 0.0, EstimateDuration(""))
	assert.InDelta(t, 60.0, EstimateDuration(strings.Repeat("word ", 150)), 1e-9)
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Found 2 products. Top one is $12.99!  Want more?   Ok")
	assert.Equal(t, []string{"Found 2 products.", "Top one is $12.99!", "Want more?", "Ok"}, got)
}

func TestSplitForSpeech(t *testing.T) {
	text := "One two. Three four. Five six."

	assert.Equal(t, []string{text}, SplitForSpeech(text, 0))
	assert.Equal(t, []string{"One two. Three four.", "Five six."}, SplitForSpeech(text, 25))
	assert.Equal(t, []string{"One two.", "Three four.", "Five six."}, SplitForSpeech(text, 5))
	assert.Nil(t, SplitForSpeech("   ", 10))
}

func TestSplitForSpeech_ChunksStayUnderLimit(t *testing.T) {
	text := strings.Repeat("This is a fairly ordinary sentence about soap. ", 300)

	chunks := SplitForSpeech(text, DefaultChunkSize)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.NoError(t, ValidateText(c))
	}
}

func TestIsKnownVoice(t *testing.T) {
	assert.True(t, IsKnownVoice("nova"))
	assert.False(t, IsKnownVoice("robot"))
}
