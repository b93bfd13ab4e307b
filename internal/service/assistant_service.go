package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"voice-shopping-be/internal/dto"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/events"
)

// Query channels, reported in events and metrics
const (
	ChannelREST  = "rest"
	ChannelAgent = "agent"
	ChannelVoice = "voice"
	ChannelCLI   = "cli"
)

var ErrEmptyQuery = errors.New("query cannot be empty")

type IAssistantService interface {
	Ask(ctx context.Context, query string, channel string) (*graph.State, bool, error)
	Query(ctx context.Context, req *dto.QueryRequest, channel string) (*dto.QueryResponse, error)
	Agent(ctx context.Context, req *dto.AgentRequest) (*dto.AgentResponse, error)
}

// QueryPipeline runs one query end to end and never fails
type QueryPipeline interface {
	Invoke(ctx context.Context, query string) *graph.State
}

// AnswerStore caches finished runs. Implemented by the Redis answer cache.
type AnswerStore interface {
	Get(ctx context.Context, query string) (*graph.State, bool, error)
	Set(ctx context.Context, query string, state *graph.State) error
}

type QueryObserver interface {
	ObserveQuery(channel string, elapsed time.Duration)
	ObserveCache(hit bool)
}

type assistantService struct {
	pipeline  QueryPipeline
	speech    ISpeechService
	cache     AnswerStore      // optional
	publisher events.Publisher // optional
	observer  QueryObserver    // optional
	logger    logger.ILogger
}

func NewAssistantService(
	pipeline QueryPipeline,
	speech ISpeechService,
	cache AnswerStore,
	publisher events.Publisher,
	observer QueryObserver,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		pipeline:  pipeline,
		speech:    speech,
		cache:     cache,
		publisher: publisher,
		observer:  observer,
		logger:    log,
	}
}

// Ask runs the pipeline, consulting the answer cache first. The bool reports a cache hit.
func (s *assistantService) Ask(ctx context.Context, query string, channel string) (*graph.State, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, ErrEmptyQuery
	}
	start := time.Now()

	if state, ok := s.lookup(ctx, query); ok {
		s.finish(ctx, state, channel, start)
		return state, true, nil
	}

	state := s.pipeline.Invoke(ctx, query)

	// Degraded runs are not cached so the next attempt can recover
	if s.cache != nil && len(state.Failed()) == 0 {
		if err := s.cache.Set(ctx, query, state); err != nil {
			s.logger.Warn("ASSISTANT", "Failed to cache answer", map[string]interface{}{"error": err.Error()})
		}
	}

	s.finish(ctx, state, channel, start)
	return state, false, nil
}

func (s *assistantService) lookup(ctx context.Context, query string) (*graph.State, bool) {
	if s.cache == nil {
		return nil, false
	}
	state, ok, err := s.cache.Get(ctx, query)
	if err != nil {
		s.logger.Warn("ASSISTANT", "Answer cache unavailable", map[string]interface{}{"error": err.Error()})
	}
	if s.observer != nil {
		s.observer.ObserveCache(ok)
	}
	return state, ok
}

func (s *assistantService) finish(ctx context.Context, state *graph.State, channel string, start time.Time) {
	elapsed := time.Since(start)

	failed := []string{}
	for _, step := range state.Failed() {
		failed = append(failed, step.Node)
	}

	s.logger.Info("ASSISTANT", "Query answered", map[string]interface{}{
		"query":    state.Query,
		"task":     state.Task,
		"strategy": state.Strategy,
		"docs":     len(state.RetrievedDocs),
		"failed":   failed,
		"channel":  channel,
		"elapsed":  elapsed.String(),
	})

	if s.observer != nil {
		s.observer.ObserveQuery(channel, elapsed)
	}
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := s.publisher.Publish(pubCtx, events.QueryAnswered{
		Query:       state.Query,
		Task:        string(state.Task),
		Strategy:    string(state.Strategy),
		NumProducts: len(state.RetrievedDocs),
		Citations:   state.Citations,
		Channel:     channel,
		Failed:      failed,
		Elapsed:     elapsed,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		s.logger.Warn("ASSISTANT", "Failed to publish query event", map[string]interface{}{"error": err.Error()})
	}
}

// Query answers and, when TTS is configured, attaches a spoken version of the answer.
// A TTS failure does not fail the query; it is reported in AudioError.
func (s *assistantService) Query(ctx context.Context, req *dto.QueryRequest, channel string) (*dto.QueryResponse, error) {
	state, cached, err := s.Ask(ctx, req.Query, channel)
	if err != nil {
		return nil, err
	}

	res := dto.NewQueryResponse(state, cached)

	if !s.speech.TTSAvailable() {
		res.AudioError = "TTS not configured"
		return res, nil
	}

	audioID, err := s.speech.SpeakAnswer(ctx, state.Answer, req.Voice)
	if err != nil {
		s.logger.Error("ASSISTANT", "Answer TTS failed", map[string]interface{}{"error": err.Error()})
		res.AudioError = err.Error()
		return res, nil
	}
	res.AudioID = audioID
	res.AudioURL = dto.AudioURL(audioID)
	return res, nil
}

func (s *assistantService) Agent(ctx context.Context, req *dto.AgentRequest) (*dto.AgentResponse, error) {
	state, _, err := s.Ask(ctx, req.Text, ChannelAgent)
	if err != nil {
		return nil, err
	}
	return dto.NewAgentResponse(state), nil
}
