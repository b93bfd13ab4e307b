// Package graph drives a query through intent extraction, planning,
// retrieval and answering, recording every stage in a step log.
package graph

import (
	"voice-shopping-be/pkg/agent/retriever"
	"voice-shopping-be/pkg/shopping"
)

// Stage names as they appear in the step log
const (
	StageRouter          = "router"
	StagePlanner         = "planner"
	StageRAGRetriever    = "rag_retriever"
	StageWebRetriever    = "web_retriever"
	StageHybridRetriever = "hybrid_retriever"
	StageAnswerer        = "answerer"
)

// StepLog is one append-only audit entry
type StepLog struct {
	Node    string `json:"node"`
	Input   any    `json:"input,omitempty"`
	Output  any    `json:"output,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// State is created per request and owned by a single Invoke call
type State struct {
	Query         string                   `json:"query"`
	Task          shopping.Task            `json:"task"`
	Constraints   shopping.Constraints     `json:"constraints"`
	SafetyFlags   []shopping.SafetyFlag    `json:"safety_flags"`
	Plan          shopping.Plan            `json:"plan"`
	Strategy      retriever.Strategy       `json:"strategy"`
	RetrievedDocs []shopping.ProductRecord `json:"retrieved_docs"`
	Answer        string                   `json:"answer"`
	Citations     []string                 `json:"citations"`
	StepLog       []StepLog                `json:"step_log"`
}

func newState(query string) *State {
	return &State{
		Query:         query,
		Task:          shopping.TaskProductSearch,
		Constraints:   shopping.EmptyConstraints(),
		SafetyFlags:   []shopping.SafetyFlag{},
		Plan:          shopping.FallbackPlan(),
		RetrievedDocs: []shopping.ProductRecord{},
		Citations:     []string{},
		StepLog:       []StepLog{},
	}
}

func (s *State) succeed(node string, input, output any) {
	s.StepLog = append(s.StepLog, StepLog{Node: node, Input: input, Output: output, Success: true})
}

func (s *State) fail(node string, input any, err error) {
	s.StepLog = append(s.StepLog, StepLog{Node: node, Input: input, Success: false, Error: err.Error()})
}

// Failed returns the step entries that did not succeed
func (s *State) Failed() []StepLog {
	out := []StepLog{}
	for _, step := range s.StepLog {
		if !step.Success {
			out = append(out, step)
		}
	}
	return out
}

// Step returns the first entry for node
func (s *State) Step(node string) (StepLog, bool) {
	for _, step := range s.StepLog {
		if step.Node == node {
			return step, true
		}
	}
	return StepLog{}, false
}
