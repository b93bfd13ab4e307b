package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/repository/filesystem"
	"voice-shopping-be/pkg/events"
	"voice-shopping-be/pkg/speech"

	"github.com/robfig/cron/v3"
)

type ISpeechService interface {
	Synthesize(ctx context.Context, req *dto.TTSRequest) (*dto.TTSResponse, error)
	SpeakAnswer(ctx context.Context, text string, voice string) (string, error)
	AudioPath(audioID string) (string, error)
	DeleteAudio(audioID string) error
	Transcribe(ctx context.Context, audio io.Reader, filename string, language string) (*speech.Transcript, error)
	CleanupAudio(ctx context.Context, maxAge time.Duration, trigger string) (int, error)
	StartCleanupSchedule(spec string, maxAge time.Duration) (func(), error)
	Voices() []speech.Voice
	TTSAvailable() bool
	ASRAvailable() bool
}

// AudioObserver is the metrics hook for retention sweeps
type AudioObserver interface {
	ObserveAudioDeleted(n int)
}

type SpeechServiceConfig struct {
	Model    string
	Voice    string
	Language string
}

type speechService struct {
	synthesizer speech.Synthesizer // nil when TTS is not configured
	transcriber speech.Transcriber // nil when ASR is not configured
	store       *filesystem.AudioStore
	publisher   events.Publisher
	observer    AudioObserver
	logger      logger.ILogger
	cfg         SpeechServiceConfig
}

func NewSpeechService(
	synthesizer speech.Synthesizer,
	transcriber speech.Transcriber,
	store *filesystem.AudioStore,
	publisher events.Publisher,
	observer AudioObserver,
	log logger.ILogger,
	cfg SpeechServiceConfig,
) ISpeechService {
	if cfg.Model == "" {
		cfg.Model = speech.DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = speech.DefaultVoice
	}
	return &speechService{
		synthesizer: synthesizer,
		transcriber: transcriber,
		store:       store,
		publisher:   publisher,
		observer:    observer,
		logger:      log,
		cfg:         cfg,
	}
}

func (s *speechService) TTSAvailable() bool { return s.synthesizer != nil }
func (s *speechService) ASRAvailable() bool { return s.transcriber != nil }

func (s *speechService) Voices() []speech.Voice {
	return speech.Voices
}

func (s *speechService) Synthesize(ctx context.Context, req *dto.TTSRequest) (*dto.TTSResponse, error) {
	if s.synthesizer == nil {
		return nil, speech.ErrNotConfigured
	}
	if err := speech.ValidateText(req.Text); err != nil {
		return nil, err
	}

	voice, model := s.pick(req.Voice, req.Model)
	audio, err := s.synthesizer.Synthesize(ctx, req.Text, voice, model)
	if err != nil {
		return nil, fmt.Errorf("tts generation failed: %w", err)
	}

	audioID, err := s.store.Save(audio)
	if err != nil {
		return nil, err
	}

	duration := speech.EstimateDuration(req.Text)
	s.logger.Info("SPEECH", "TTS generated", map[string]interface{}{
		"audio_id": audioID,
		"chars":    len(req.Text),
		"voice":    voice,
		"duration": duration,
	})

	return &dto.TTSResponse{
		Success:          true,
		AudioID:          audioID,
		AudioURL:         dto.AudioURL(audioID),
		DurationEstimate: duration,
		Message:          "TTS generated successfully",
	}, nil
}

// SpeakAnswer synthesizes text of any length. Long answers are split on
// sentence boundaries and the mp3 chunks are stored back to back as one clip.
func (s *speechService) SpeakAnswer(ctx context.Context, text string, voice string) (string, error) {
	if s.synthesizer == nil {
		return "", speech.ErrNotConfigured
	}
	voice, model := s.pick(voice, "")

	var clip bytes.Buffer
	for i, chunk := range speech.SplitForSpeech(text, speech.DefaultChunkSize) {
		audio, err := s.synthesizer.Synthesize(ctx, chunk, voice, model)
		if err != nil {
			return "", fmt.Errorf("tts chunk %d: %w", i+1, err)
		}
		clip.Write(audio)
	}
	if clip.Len() == 0 {
		return "", speech.ErrEmptyText
	}
	return s.store.Save(clip.Bytes())
}

func (s *speechService) pick(voice, model string) (string, string) {
	if voice == "" {
		voice = s.cfg.Voice
	}
	if model == "" {
		model = s.cfg.Model
	}
	return voice, model
}

func (s *speechService) AudioPath(audioID string) (string, error) {
	return s.store.Path(audioID)
}

func (s *speechService) DeleteAudio(audioID string) error {
	if err := s.store.Delete(audioID); err != nil {
		return err
	}
	s.logger.Info("SPEECH", "Deleted audio", map[string]interface{}{"audio_id": audioID})
	return nil
}

func (s *speechService) Transcribe(ctx context.Context, audio io.Reader, filename string, language string) (*speech.Transcript, error) {
	if s.transcriber == nil {
		return nil, speech.ErrNotConfigured
	}
	if language == "" {
		language = s.cfg.Language
	}
	return s.transcriber.Transcribe(ctx, audio, filename, language)
}

func (s *speechService) CleanupAudio(ctx context.Context, maxAge time.Duration, trigger string) (int, error) {
	deleted, err := s.store.Cleanup(maxAge)
	if err != nil {
		return 0, fmt.Errorf("cleanup audio: %w", err)
	}

	s.logger.Info("SPEECH", "Audio cleanup finished", map[string]interface{}{
		"deleted": deleted,
		"max_age": maxAge.String(),
		"trigger": trigger,
	})
	if s.observer != nil {
		s.observer.ObserveAudioDeleted(deleted)
	}
	if s.publisher != nil && deleted > 0 {
		evt := events.AudioCleaned{Deleted: deleted, MaxAge: maxAge, Trigger: trigger, OccurredAt: time.Now()}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("SPEECH", "Failed to publish cleanup event", map[string]interface{}{"error": err.Error()})
		}
	}
	return deleted, nil
}

// StartCleanupSchedule runs CleanupAudio on the cron spec until the returned stop is called
func (s *speechService) StartCleanupSchedule(spec string, maxAge time.Duration) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.CleanupAudio(ctx, maxAge, "cron"); err != nil {
			s.logger.Error("SPEECH", "Scheduled cleanup failed", map[string]interface{}{"error": err.Error()})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}

	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
