// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_portaudio implements the audio analysis capability over
// PortAudio for native (non-browser) hosts: one input stream per context,
// an FFT analyzer fed by a pump goroutine, and real sample-rate negotiation
// so the calibration fallback path behaves the same as it does against a
// browser capture stack.
package internal_portaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	internal_audio "github.com/rapidaai/capture/internal/audio"
	"github.com/rapidaai/capture/pkg/commons"
)

const framesPerBuffer = 512

// Provider creates PortAudio-backed analysis contexts.
type Provider struct {
	logger     commons.Logger
	deviceName string
}

// ProviderOption configures NewProvider.
type ProviderOption func(*Provider)

// WithInputDevice captures from the named device instead of the default.
// An unknown name falls back to the default device.
func WithInputDevice(name string) ProviderOption {
	return func(p *Provider) { p.deviceName = name }
}

// NewProvider returns a provider. PortAudio itself is initialized per
// context so a failed negotiation never corrupts the next attempt.
func NewProvider(logger commons.Logger, opts ...ProviderOption) *Provider {
	p := &Provider{logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewContext opens the configured input device at the requested rate.
// SampleRate 0 uses the device default. The context starts suspended; the
// stream runs only after Resume.
func (p *Provider) NewContext(_ context.Context, opts internal_audio.ContextOptions) (internal_audio.AnalysisContext, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	device, err := p.inputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("no usable input device: %w", err)
	}

	rate := opts.SampleRate
	if rate == 0 {
		rate = int(device.DefaultSampleRate)
	}

	buffer := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(rate),
		FramesPerBuffer: framesPerBuffer,
	}, buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open input stream at %d Hz: %w", rate, err)
	}

	return &analysisContext{
		logger:     p.logger,
		sampleRate: rate,
		state:      internal_audio.ContextSuspended,
		stream:     stream,
		buffer:     buffer,
	}, nil
}

// inputDevice resolves the configured device by name, falling back to the
// system default when unset or not found.
func (p *Provider) inputDevice() (*portaudio.DeviceInfo, error) {
	if p.deviceName != "" && p.deviceName != "default" {
		devices, err := portaudio.Devices()
		if err == nil {
			for _, dev := range devices {
				if dev.Name == p.deviceName && dev.MaxInputChannels > 0 {
					return dev, nil
				}
			}
		}
		if p.logger != nil {
			p.logger.Warnf("input device %q not found, using default", p.deviceName)
		}
	}
	return portaudio.DefaultInputDevice()
}

type analysisContext struct {
	mu         sync.Mutex
	logger     commons.Logger
	sampleRate int
	state      internal_audio.ContextState
	stream     *portaudio.Stream
	buffer     []float32
}

func (c *analysisContext) SampleRate() int {
	return c.sampleRate
}

func (c *analysisContext) State() internal_audio.ContextState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *analysisContext) Resume(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == internal_audio.ContextRunning {
		return nil
	}
	if c.state == internal_audio.ContextClosed {
		return fmt.Errorf("analysis context is closed")
	}
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	c.state = internal_audio.ContextRunning
	return nil
}

// NewSource wraps the context's input stream. The InputSource handle is
// accepted for interface compatibility; PortAudio contexts always capture
// the stream they were opened with.
func (c *analysisContext) NewSource(_ internal_audio.InputSource) (internal_audio.SourceNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == internal_audio.ContextClosed {
		return nil, fmt.Errorf("analysis context is closed")
	}
	return &sourceNode{ctx: c}, nil
}

func (c *analysisContext) NewAnalyzer(fftSize int, smoothing float64) (internal_audio.Analyzer, error) {
	if fftSize <= 0 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two, got %d", fftSize)
	}
	return newAnalyzer(fftSize, smoothing), nil
}

func (c *analysisContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == internal_audio.ContextClosed {
		return nil
	}
	c.state = internal_audio.ContextClosed

	var firstErr error
	if err := c.stream.Stop(); err != nil && c.logger != nil {
		c.logger.Warnf("failed to stop input stream: %v", err)
	}
	if err := c.stream.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close input stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return firstErr
}

// sourceNode pumps stream reads into the connected analyzer.
type sourceNode struct {
	ctx  *analysisContext
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (s *sourceNode) Connect(target internal_audio.Analyzer) error {
	sink, ok := target.(*analyzer)
	if !ok {
		return fmt.Errorf("analyzer was not created by this context")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return fmt.Errorf("source already connected")
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.pump(sink, s.stop, s.done)
	return nil
}

func (s *sourceNode) pump(sink *analyzer, stop, done chan struct{}) {
	defer close(done)
	samples := make([]float32, len(s.ctx.buffer))
	for {
		select {
		case <-stop:
			return
		default:
		}
		if s.ctx.State() != internal_audio.ContextRunning {
			return
		}
		if err := s.ctx.stream.Read(); err != nil {
			// Overflows are routine under scheduling jitter; keep reading.
			if err == portaudio.InputOverflowed {
				continue
			}
			return
		}
		copy(samples, s.ctx.buffer)
		sink.push(samples)
	}
}

func (s *sourceNode) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
	return nil
}
