// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_lifecycle

import (
	"math"

	"github.com/rapidaai/capture/pkg/utils"
)

const defaultErrorMessage = "something went wrong"

// Reduce is the sole transition function: pure, total, and panic-free. It
// never mutates s; unrecognized or nil actions return s unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case Init:
		if a.InstanceID != "" {
			s.InstanceID = a.InstanceID
		}
		if a.Env != nil {
			s.Env = a.Env
		}
		s.Status = StatusIdle
		s.Error = nil
		s.Submission = Submission{}
		return s

	case StepContinue:
		s.Status = StatusReadyToRecord
		s.Error = nil
		return s

	case MicStart:
		s.Status = StatusRecording
		s.Source.Kind = SourceMic
		return s

	case MicStop:
		s.Status = StatusProcessing
		return s

	case MicComplete:
		s.Status = StatusReadyToSubmit
		s.Source = Source{
			Kind:     SourceMic,
			Blob:     a.Blob,
			FileName: a.FileName,
		}
		s.Submission = Submission{}
		return s

	case FileAttached:
		s.Status = StatusReadyToSubmit
		s.Source = Source{
			Kind:     SourceFile,
			File:     a.File,
			FileName: a.FileName,
		}
		return s

	case SubmitStart:
		s.Status = StatusSubmitting
		s.Submission = Submission{Progress: 0, IsQueued: a.Queued}
		return s

	case SubmitProgress:
		s.Status = StatusSubmitting
		if !math.IsNaN(a.Progress) {
			s.Submission.Progress = utils.Clamp(a.Progress, 0, 1)
		}
		return s

	case SubmitComplete:
		s.Status = StatusComplete
		s.Submission.Progress = 1
		return s

	case Fail:
		if a.Status != "" {
			s.Status = a.Status
		}
		message := a.Message
		if message == "" {
			message = defaultErrorMessage
		}
		retryable := true
		if a.Retryable != nil {
			retryable = *a.Retryable
		}
		s.Error = &StateError{Message: message, Retryable: retryable}
		return s

	case Reset:
		return State{
			InstanceID: s.InstanceID,
			Env:        s.Env,
			Status:     StatusIdle,
		}

	default:
		// Unknown action types and nil are identity transitions.
		return s
	}
}
