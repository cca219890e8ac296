// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_lifecycle

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rapidaai/capture/pkg/commons"
)

// Listener observes state changes. Listeners run synchronously on the
// dispatching goroutine, in subscription order.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Store is the lifecycle state container: one state cell advanced only by
// Reduce, with synchronous observer notification. All mutation goes through
// Dispatch; observers are read-only.
type Store struct {
	mu        sync.Mutex
	logger    commons.Logger
	state     State
	subs      []subscription
	nextSubID int
}

// StoreOption configures NewStore.
type StoreOption func(*Store)

// WithInstanceID seeds the instance identifier instead of generating one.
func WithInstanceID(id string) StoreOption {
	return func(s *Store) { s.state.InstanceID = id }
}

// NewStore creates a store in the uninitialized state. When no instance ID
// is supplied a UUID is generated, so the ID is stable before Init is ever
// dispatched.
func NewStore(logger commons.Logger, opts ...StoreOption) *Store {
	s := &Store{
		logger: logger,
		state:  NewState(uuid.New().String()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch applies the action through Reduce and notifies every listener
// with the new state. Dispatch never fails: malformed actions are identity
// transitions, and a panicking listener is logged and isolated so its
// siblings still run and the stored state stays intact.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state
	listeners := make([]subscription, len(s.subs))
	copy(listeners, s.subs)
	s.mu.Unlock()

	for _, sub := range listeners {
		s.notify(sub, next)
	}
}

func (s *Store) notify(sub subscription, state State) {
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Errorf("state listener %d panicked: %v", sub.id, r)
		}
	}()
	sub.fn(state)
}
