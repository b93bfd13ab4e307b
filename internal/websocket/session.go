package websocket

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/repository/memory"
	"voice-shopping-be/internal/service"
)

const (
	transcribeTimeout = 60 * time.Second
	answerTimeout     = 90 * time.Second
)

// Session handles the messages of one voice connection. Audio chunks are
// buffered until the client sends stop.
type Session struct {
	ID        string
	assistant service.IAssistantService
	speech    service.ISpeechService
	buffers   *memory.AudioSessionRepository
	logger    logger.ILogger
}

func NewSession(
	id string,
	assistant service.IAssistantService,
	speech service.ISpeechService,
	buffers *memory.AudioSessionRepository,
	log logger.ILogger,
) *Session {
	buffers.Create(id)
	return &Session{
		ID:        id,
		assistant: assistant,
		speech:    speech,
		buffers:   buffers,
		logger:    log,
	}
}

// Handle returns the replies for one client message, in order
func (s *Session) Handle(ctx context.Context, msg dto.VoiceClientMessage) []dto.VoiceServerMessage {
	switch msg.Type {
	case dto.VoiceTypeAudio:
		return s.addAudio(msg)
	case dto.VoiceTypeStop:
		return s.stop(ctx, msg)
	case dto.VoiceTypeQuery:
		return []dto.VoiceServerMessage{s.answer(ctx, msg.Text, msg.Speak)}
	case dto.VoiceTypePing:
		return []dto.VoiceServerMessage{{Type: dto.VoiceTypePong}}
	}

	s.logger.Warn("VoiceSession", "Unknown message type", map[string]interface{}{"session_id": s.ID, "type": msg.Type})
	return []dto.VoiceServerMessage{errorMessage(fmt.Sprintf("unknown message type %q", msg.Type))}
}

// Close drops the session buffer
func (s *Session) Close() {
	s.buffers.Delete(s.ID)
}

func (s *Session) addAudio(msg dto.VoiceClientMessage) []dto.VoiceServerMessage {
	chunk, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		return []dto.VoiceServerMessage{errorMessage("Failed to process audio: invalid base64")}
	}

	size, ok := s.buffers.AddChunk(s.ID, chunk)
	if !ok {
		return []dto.VoiceServerMessage{errorMessage(fmt.Sprintf("Audio buffer full (%d bytes), send stop first", size))}
	}

	s.logger.Debug("VoiceSession", "Audio chunk buffered", map[string]interface{}{
		"session_id": s.ID,
		"chunk":      len(chunk),
		"buffered":   size,
	})
	return nil
}

func (s *Session) stop(ctx context.Context, msg dto.VoiceClientMessage) []dto.VoiceServerMessage {
	audio := s.buffers.Take(s.ID)
	if len(audio) == 0 {
		return []dto.VoiceServerMessage{errorMessage("No audio received")}
	}

	tctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	transcript, err := s.speech.Transcribe(tctx, bytes.NewReader(audio), "recording.webm", msg.Language)
	if err != nil {
		s.logger.Error("VoiceSession", "Transcription failed", map[string]interface{}{"session_id": s.ID, "error": err.Error()})
		return []dto.VoiceServerMessage{errorMessage("Transcription failed: " + err.Error())}
	}

	s.logger.Info("VoiceSession", "Transcription complete", map[string]interface{}{
		"session_id": s.ID,
		"bytes":      len(audio),
		"chars":      len(transcript.Text),
	})

	replies := []dto.VoiceServerMessage{{
		Type:     dto.VoiceTypeTranscript,
		Text:     transcript.Text,
		IsFinal:  true,
		Language: transcript.Language,
	}}
	if msg.Speak && transcript.Text != "" {
		replies = append(replies, s.answer(ctx, transcript.Text, true))
	}
	return replies
}

// answer runs the assistant. With speak the answer also carries TTS audio.
func (s *Session) answer(ctx context.Context, text string, speak bool) dto.VoiceServerMessage {
	actx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()

	var (
		res *dto.QueryResponse
		err error
	)
	if speak {
		res, err = s.assistant.Query(actx, &dto.QueryRequest{Query: text}, service.ChannelVoice)
	} else {
		state, cached, askErr := s.assistant.Ask(actx, text, service.ChannelVoice)
		err = askErr
		if err == nil {
			res = dto.NewQueryResponse(state, cached)
		}
	}
	if err != nil {
		return errorMessage(err.Error())
	}

	return dto.VoiceServerMessage{Type: dto.VoiceTypeAnswer, Text: res.Answer, Answer: res}
}

func errorMessage(message string) dto.VoiceServerMessage {
	return dto.VoiceServerMessage{Type: dto.VoiceTypeError, Message: message}
}
