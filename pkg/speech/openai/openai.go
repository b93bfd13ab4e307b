package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"voice-shopping-be/pkg/speech"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultTranscriptionModel = "whisper-1"

// Client talks to the OpenAI audio endpoints for both directions
type Client struct {
	client   openaisdk.Client
	asrModel string
}

var (
	_ speech.Transcriber = &Client{}
	_ speech.Synthesizer = &Client{}
)

func NewClient(apiKey, baseURL, asrModel string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if asrModel == "" {
		asrModel = DefaultTranscriptionModel
	}
	return &Client{
		client:   openaisdk.NewClient(opts...),
		asrModel: asrModel,
	}
}

// Synthesize returns mp3 bytes for text
func (c *Client) Synthesize(ctx context.Context, text string, voice string, model string) ([]byte, error) {
	if err := speech.ValidateText(text); err != nil {
		return nil, err
	}
	if voice == "" {
		voice = speech.DefaultVoice
	}
	if !speech.IsKnownVoice(voice) {
		return nil, fmt.Errorf("%w: %s", speech.ErrUnknownVoice, voice)
	}
	if model == "" {
		model = speech.DefaultModel
	}

	resp, err := c.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Model:          openaisdk.SpeechModel(model),
		Input:          text,
		Voice:          openaisdk.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}
	return audio, nil
}

// Transcribe sends the recording to the transcription model. The JSON
// response carries no language, so the requested one is echoed back.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string, language string) (*speech.Transcript, error) {
	if filename == "" {
		filename = "audio.webm"
	}

	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("buffer audio: %w", err)
	}
	if len(data) == 0 {
		return nil, speech.ErrEmptyAudio
	}

	params := openaisdk.AudioTranscriptionNewParams{
		File:           openaisdk.File(bytes.NewReader(data), filename, "application/octet-stream"),
		Model:          openaisdk.AudioModel(c.asrModel),
		ResponseFormat: openaisdk.AudioResponseFormatJSON,
	}
	if language != "" {
		params.Language = openaisdk.String(language)
	}

	res, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	return &speech.Transcript{Text: strings.TrimSpace(res.Text), Language: language}, nil
}
