package dto

import (
	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/shopping"
)

type QueryRequest struct {
	Query string `json:"query" validate:"required,max=500"`
	Voice string `json:"voice" validate:"omitempty,oneof=alloy echo fable onyx nova shimmer"`
}

type QueryResponse struct {
	Success     bool                     `json:"success"`
	Query       string                   `json:"query"`
	Answer      string                   `json:"answer"`
	Citations   []string                 `json:"citations"`
	Products    []shopping.ProductRecord `json:"products"`
	Task        shopping.Task            `json:"task"`
	Constraints shopping.Constraints     `json:"constraints"`
	SafetyFlags []shopping.SafetyFlag    `json:"safety_flags"`
	Plan        shopping.Plan            `json:"plan"`
	AudioID     string                   `json:"audio_id,omitempty"`
	AudioURL    string                   `json:"audio_url,omitempty"`
	AudioError  string                   `json:"audio_error,omitempty"`
	Cached      bool                     `json:"cached"`
	StepLog     []graph.StepLog          `json:"step_log"`
}

// NewQueryResponse copies a finished pipeline run into the query response.
// Audio fields are filled in by the caller.
func NewQueryResponse(state *graph.State, cached bool) *QueryResponse {
	return &QueryResponse{
		Success:     true,
		Query:       state.Query,
		Answer:      state.Answer,
		Citations:   state.Citations,
		Products:    state.RetrievedDocs,
		Task:        state.Task,
		Constraints: state.Constraints,
		SafetyFlags: state.SafetyFlags,
		Plan:        state.Plan,
		Cached:      cached,
		StepLog:     state.StepLog,
	}
}

type AgentRequest struct {
	Text     string                 `json:"text" validate:"required,max=500"`
	Language string                 `json:"language,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type AgentResponse struct {
	Query         string                   `json:"query"`
	Answer        string                   `json:"answer"`
	Citations     []string                 `json:"citations"`
	Plan          shopping.Plan            `json:"plan"`
	RetrievedDocs []shopping.ProductRecord `json:"retrieved_docs"`
	StepLog       []graph.StepLog          `json:"step_log"`
}

// NewAgentResponse copies the parts of a finished pipeline run the agent endpoint exposes
func NewAgentResponse(state *graph.State) *AgentResponse {
	return &AgentResponse{
		Query:         state.Query,
		Answer:        state.Answer,
		Citations:     state.Citations,
		Plan:          state.Plan,
		RetrievedDocs: state.RetrievedDocs,
		StepLog:       state.StepLog,
	}
}

type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Version        string `json:"version"`
	TTSAvailable   bool   `json:"tts_available"`
	ASRAvailable   bool   `json:"asr_available"`
	AgentAvailable bool   `json:"agent_available"`
}
