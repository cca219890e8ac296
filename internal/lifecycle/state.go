// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_lifecycle

import (
	internal_environment "github.com/rapidaai/capture/internal/environment"
)

// Status is the single lifecycle position of a capture widget. Exactly one
// value holds at a time; transitions happen only through Reduce.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusIdle          Status = "idle"
	StatusReadyToRecord Status = "ready_to_record"
	StatusRecording     Status = "recording"
	StatusProcessing    Status = "processing"
	StatusReadyToSubmit Status = "ready_to_submit"
	StatusSubmitting    Status = "submitting"
	StatusComplete      Status = "complete"
)

// SourceKind says where the captured media came from.
type SourceKind string

const (
	SourceNone SourceKind = ""
	SourceMic  SourceKind = "mic"
	SourceFile SourceKind = "file"
)

// FileRef identifies an attached file without holding its contents.
type FileRef struct {
	Name string
	Path string
	Size int64
}

// Source holds the captured media. Blob is populated for mic recordings,
// File for attachments; they are never both non-nil.
type Source struct {
	Kind     SourceKind
	Blob     []byte
	File     *FileRef
	FileName string
}

// Submission tracks upload progress. Progress is in [0, 1].
type Submission struct {
	Progress float64
	IsQueued bool
}

// StateError is a user-presentable failure attached to the state.
type StateError struct {
	Message   string
	Retryable bool
}

// State is the complete lifecycle snapshot. It is a value type: Reduce
// returns fresh copies and never writes through the shared pointers it
// carries (Env, Source.File, Error).
type State struct {
	InstanceID string
	Env        *internal_environment.EnvironmentData
	Status     Status
	Error      *StateError
	Source     Source
	Submission Submission
}

// NewState returns the pre-init state for an instance.
func NewState(instanceID string) State {
	return State{
		InstanceID: instanceID,
		Status:     StatusUninitialized,
	}
}
