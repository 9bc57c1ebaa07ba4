package server

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/playperu/minigames/internal/engine"
	"github.com/playperu/minigames/internal/minigame"
)

var ErrNotFound = errors.New("not found")

// EngineSpec is a registered engine family and its reveal pause.
type EngineSpec struct {
	Family      engine.Family
	RevealDelay time.Duration
}

// Registry holds the engine families served under /ws/play/{engine} and the
// countdown shared by all of them.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]EngineSpec

	countdownTicks    int
	countdownInterval time.Duration
	clock             minigame.Clock
}

func NewRegistry(countdownTicks int, countdownInterval time.Duration) *Registry {
	return &Registry{
		engines:           make(map[string]EngineSpec),
		countdownTicks:    countdownTicks,
		countdownInterval: countdownInterval,
		clock:             minigame.WallClock,
	}
}

func (r *Registry) Register(f engine.Family, revealDelay time.Duration) {
	r.mu.Lock()
	r.engines[f.Name()] = EngineSpec{Family: f, RevealDelay: revealDelay}
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (EngineSpec, error) {
	r.mu.RLock()
	spec, ok := r.engines[name]
	r.mu.RUnlock()
	if !ok {
		return EngineSpec{}, ErrNotFound
	}
	return spec, nil
}

// Names returns the registered engine names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewMachine returns a fresh machine for one session of spec.
func (r *Registry) NewMachine(spec EngineSpec) *engine.Machine {
	return &engine.Machine{
		Family:            spec.Family,
		Clock:             r.clock,
		CountdownTicks:    r.countdownTicks,
		CountdownInterval: r.countdownInterval,
		RevealDelay:       spec.RevealDelay,
	}
}

// Check implements health.Checker: a registry without engines cannot serve
// any game.
func (r *Registry) Check(context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.engines) == 0 {
		return errors.New("no engines registered")
	}
	return nil
}
