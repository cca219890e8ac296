// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_lifecycle

import (
	internal_environment "github.com/rapidaai/capture/internal/environment"
)

// Action is a dispatched lifecycle event. The set of recognized actions is
// the concrete types below; anything else (including nil) is an identity
// transition. ActionType exists for logging and diagnostics only — Reduce
// switches on the concrete type.
type Action interface {
	ActionType() string
}

// Init moves the widget out of uninitialized. InstanceID and Env are
// applied only when non-zero.
type Init struct {
	InstanceID string
	Env        *internal_environment.EnvironmentData
}

// StepContinue advances from idle to the recording-ready step.
type StepContinue struct{}

// MicStart begins a microphone recording.
type MicStart struct{}

// MicStop ends capture and enters processing.
type MicStop struct{}

// MicComplete delivers the finished recording.
type MicComplete struct {
	Blob     []byte
	FileName string
}

// FileAttached delivers a user-chosen file instead of a recording.
type FileAttached struct {
	File     *FileRef
	FileName string
}

// SubmitStart begins the upload. Queued marks an offline-queued submission.
type SubmitStart struct {
	Queued bool
}

// SubmitProgress reports upload progress in [0, 1]. NaN is ignored, the
// lifecycle analog of a non-numeric progress event.
type SubmitProgress struct {
	Progress float64
}

// SubmitComplete finishes the upload.
type SubmitComplete struct{}

// Fail records an error. Status, Message and Retryable are optional;
// omitted fields fall back to the current status and a generic retryable
// error.
type Fail struct {
	Status    Status
	Message   string
	Retryable *bool
}

// Reset returns to idle, preserving instance identity and environment.
type Reset struct{}

func (Init) ActionType() string           { return "init" }
func (StepContinue) ActionType() string   { return "ui/step-continue" }
func (MicStart) ActionType() string       { return "mic-start" }
func (MicStop) ActionType() string        { return "mic-stop" }
func (MicComplete) ActionType() string    { return "mic-complete" }
func (FileAttached) ActionType() string   { return "file-attached" }
func (SubmitStart) ActionType() string    { return "submit-start" }
func (SubmitProgress) ActionType() string { return "submit-progress" }
func (SubmitComplete) ActionType() string { return "submit-complete" }
func (Fail) ActionType() string           { return "error" }
func (Reset) ActionType() string          { return "reset" }
