package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"voice-shopping-be/pkg/agent/graph"

	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// printState writes the pipeline result in reading order: intent, stages, answer
func printState(w io.Writer, state *graph.State, cached bool, verbose bool) {
	headerColor.Fprintf(w, "Query: %s\n", state.Query)
	if cached {
		dimColor.Fprintln(w, "(answer served from cache)")
	}
	fmt.Fprintf(w, "Task: %s  Strategy: %s\n", state.Task, state.Strategy)
	if len(state.SafetyFlags) > 0 {
		flags := make([]string, len(state.SafetyFlags))
		for i, f := range state.SafetyFlags {
			flags[i] = string(f)
		}
		failureColor.Fprintf(w, "Safety flags: %s\n", strings.Join(flags, ", "))
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Steps")
	for i, step := range state.StepLog {
		if step.Success {
			successColor.Fprintf(w, "  %d. [ok]   %s\n", i+1, step.Node)
		} else {
			failureColor.Fprintf(w, "  %d. [fail] %s: %s\n", i+1, step.Node, step.Error)
		}
		if verbose {
			printDetail(w, "input", step.Input)
			printDetail(w, "output", step.Output)
		}
	}

	fmt.Fprintln(w)
	headerColor.Fprintf(w, "Products (%d)\n", len(state.RetrievedDocs))
	for _, doc := range state.RetrievedDocs {
		fmt.Fprintf(w, "  - %s  $%.2f  [%s]\n", doc.Title, doc.Price, doc.Source)
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "Answer")
	fmt.Fprintln(w, state.Answer)
	if len(state.Citations) > 0 {
		dimColor.Fprintf(w, "Citations: %s\n", strings.Join(state.Citations, ", "))
	}
}

func printDetail(w io.Writer, label string, v any) {
	if v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	dimColor.Fprintf(w, "       %s: %s\n", label, raw)
}
