// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio

import (
	"context"
	"time"
)

// Clock abstracts frame-tick scheduling so sampling loops can be driven
// synchronously in tests. NextTick blocks until the next frame boundary or
// until ctx is cancelled, in which case it returns ctx.Err().
type Clock interface {
	Now() time.Time
	NextTick(ctx context.Context) error
}

// FrameInterval approximates a display-refresh cadence.
const FrameInterval = time.Second / 60

// frameClock is the production Clock: real time, one tick per FrameInterval.
type frameClock struct {
	interval time.Duration
}

// NewFrameClock returns a Clock ticking at the display-refresh cadence.
func NewFrameClock() Clock {
	return &frameClock{interval: FrameInterval}
}

func (c *frameClock) Now() time.Time {
	return time.Now()
}

func (c *frameClock) NextTick(ctx context.Context) error {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
