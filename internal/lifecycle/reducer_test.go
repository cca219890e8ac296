// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_lifecycle

import (
	"math"
	"reflect"
	"testing"

	internal_environment "github.com/rapidaai/capture/internal/environment"
)

type unknownAction struct{}

func (unknownAction) ActionType() string { return "nope" }

func initializedState() State {
	env := &internal_environment.EnvironmentData{Tier: internal_environment.TierB}
	return Reduce(NewState("x"), Init{InstanceID: "x", Env: env})
}

func TestReduceTransitionTable(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		action   Action
		expected Status
	}{
		{"init", NewState("x"), Init{}, StatusIdle},
		{"step continue", initializedState(), StepContinue{}, StatusReadyToRecord},
		{"mic start", initializedState(), MicStart{}, StatusRecording},
		{"mic stop", initializedState(), MicStop{}, StatusProcessing},
		{"mic complete", initializedState(), MicComplete{Blob: []byte{1}}, StatusReadyToSubmit},
		{"file attached", initializedState(), FileAttached{File: &FileRef{Name: "a"}}, StatusReadyToSubmit},
		{"submit start", initializedState(), SubmitStart{}, StatusSubmitting},
		{"submit progress", initializedState(), SubmitProgress{Progress: 0.5}, StatusSubmitting},
		{"submit complete", initializedState(), SubmitComplete{}, StatusComplete},
		{"reset", initializedState(), Reset{}, StatusIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := Reduce(tt.from, tt.action)
			if next.Status != tt.expected {
				t.Errorf("expected status %q, got %q", tt.expected, next.Status)
			}
		})
	}
}

func TestReducePurity(t *testing.T) {
	state := initializedState()
	before := state

	first := Reduce(state, MicStart{})
	second := Reduce(state, MicStart{})

	if !reflect.DeepEqual(first, second) {
		t.Error("equal inputs must yield deep-equal outputs")
	}
	if !reflect.DeepEqual(state, before) {
		t.Error("Reduce must not mutate its input state")
	}
}

func TestReduceUnknownActionIsIdentity(t *testing.T) {
	state := initializedState()
	if next := Reduce(state, unknownAction{}); !reflect.DeepEqual(next, state) {
		t.Error("unknown action type must be an identity transition")
	}
	if next := Reduce(state, nil); !reflect.DeepEqual(next, state) {
		t.Error("nil action must be an identity transition")
	}
}

// Scenario: init then mic-start.
func TestReduceInitThenMicStart(t *testing.T) {
	env := &internal_environment.EnvironmentData{Tier: internal_environment.TierA}
	state := Reduce(NewState(""), Init{InstanceID: "x", Env: env})

	if state.Status != StatusIdle {
		t.Fatalf("expected idle after init, got %q", state.Status)
	}
	if state.InstanceID != "x" || state.Env != env {
		t.Error("init must apply provided instance ID and env")
	}

	state = Reduce(state, MicStart{})
	if state.Status != StatusRecording {
		t.Fatalf("expected recording, got %q", state.Status)
	}
	if state.Source.Kind != SourceMic {
		t.Errorf("expected mic source kind, got %q", state.Source.Kind)
	}
}

// Scenario: a finished recording replaces the source and resets submission.
func TestReduceMicComplete(t *testing.T) {
	blob := []byte{0x1a, 0x45}
	state := Reduce(initializedState(), MicStart{})
	state = Reduce(state, MicStop{})
	state = Reduce(state, MicComplete{Blob: blob, FileName: "a.webm"})

	if state.Status != StatusReadyToSubmit {
		t.Fatalf("expected ready_to_submit, got %q", state.Status)
	}
	expected := Source{Kind: SourceMic, Blob: blob, File: nil, FileName: "a.webm"}
	if !reflect.DeepEqual(state.Source, expected) {
		t.Errorf("unexpected source: %+v", state.Source)
	}
	if state.Submission != (Submission{Progress: 0, IsQueued: false}) {
		t.Errorf("mic-complete must reset submission, got %+v", state.Submission)
	}
}

func TestReduceSourceExclusivity(t *testing.T) {
	state := Reduce(initializedState(), MicComplete{Blob: []byte{1}, FileName: "a.webm"})
	state = Reduce(state, FileAttached{File: &FileRef{Name: "b.mp3"}, FileName: "b.mp3"})

	if state.Source.Kind != SourceFile {
		t.Fatalf("expected file source, got %q", state.Source.Kind)
	}
	if state.Source.Blob != nil {
		t.Error("attaching a file must clear the recorded blob")
	}

	state = Reduce(state, MicComplete{Blob: []byte{2}, FileName: "c.webm"})
	if state.Source.File != nil {
		t.Error("completing a recording must clear the attached file")
	}
}

func TestReduceSubmission(t *testing.T) {
	state := Reduce(initializedState(), SubmitStart{Queued: true})
	if !state.Submission.IsQueued || state.Submission.Progress != 0 {
		t.Errorf("unexpected submission after start: %+v", state.Submission)
	}

	state = Reduce(state, SubmitProgress{Progress: 0.4})
	if state.Submission.Progress != 0.4 {
		t.Errorf("expected progress 0.4, got %f", state.Submission.Progress)
	}

	state = Reduce(state, SubmitProgress{Progress: math.NaN()})
	if state.Submission.Progress != 0.4 {
		t.Error("NaN progress must leave the previous value intact")
	}

	state = Reduce(state, SubmitProgress{Progress: 3.5})
	if state.Submission.Progress != 1 {
		t.Error("progress must be clamped to [0, 1]")
	}

	state = Reduce(state, SubmitComplete{})
	if state.Status != StatusComplete || state.Submission.Progress != 1 {
		t.Errorf("unexpected completion state: %q %+v", state.Status, state.Submission)
	}
}

func TestReduceFail(t *testing.T) {
	retryable := false
	state := Reduce(initializedState(), Fail{
		Status:    StatusIdle,
		Message:   "microphone unavailable",
		Retryable: &retryable,
	})
	if state.Status != StatusIdle {
		t.Errorf("expected status override, got %q", state.Status)
	}
	if state.Error == nil || state.Error.Message != "microphone unavailable" || state.Error.Retryable {
		t.Errorf("unexpected error: %+v", state.Error)
	}

	state = Reduce(initializedState(), Fail{})
	if state.Status != StatusIdle {
		t.Error("error without status must leave status unchanged")
	}
	if state.Error == nil || state.Error.Message == "" || !state.Error.Retryable {
		t.Errorf("expected default retryable error, got %+v", state.Error)
	}
}

func TestReduceErrorClearedByContinue(t *testing.T) {
	state := Reduce(initializedState(), Fail{Message: "boom"})
	state = Reduce(state, StepContinue{})
	if state.Error != nil {
		t.Error("step-continue must clear the error")
	}
}

func TestReduceResetPreservesIdentity(t *testing.T) {
	state := initializedState()
	state = Reduce(state, MicComplete{Blob: []byte{1}, FileName: "a.webm"})
	state = Reduce(state, Fail{Message: "boom"})

	reset := Reduce(state, Reset{})
	if reset.InstanceID != state.InstanceID {
		t.Error("reset must preserve the instance ID")
	}
	if reset.Env != state.Env {
		t.Error("reset must preserve the environment snapshot")
	}
	if reset.Status != StatusIdle {
		t.Errorf("expected idle after reset, got %q", reset.Status)
	}
	if reset.Source.Kind != SourceNone || reset.Source.Blob != nil || reset.Error != nil {
		t.Error("reset must restore defaults")
	}
}
