package sable

import (
	"path/filepath"
	"reflect"
	"runtime"
	"slices"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// System is a user-defined function executed by the scheduler. The context
// it receives is built immediately before the body runs and must not be
// retained after it returns.
type System func(wCtx WorldContext) error

// Gate is a run-time predicate over the game state, evaluated before a
// system's schedule is consulted. A nil gate always passes. A gate error is
// fatal for the tick.
type Gate func(game Game) (bool, error)

type scheduleKind int

const (
	scheduleNever scheduleKind = iota
	scheduleAlways
	scheduleSingleCall
	scheduleForNUpdates
	scheduleEveryNUpdates
)

// RunSchedule is the recurrence state machine of one registered system. It
// advances exactly once per tick the system's gate lets through; a schedule
// that reaches its terminal state marks the system dead, and the scheduler
// prunes it after the pass.
type RunSchedule struct {
	kind      scheduleKind
	remaining uint64 // ForNUpdates: runs left, including the current one
	interval  uint64 // EveryNUpdates: run every interval-th eligible tick
	counter   uint64 // EveryNUpdates: ticks since last run, never reset to 0
}

// Never is the terminal schedule: the system is dead and will be pruned
// without ever running.
func Never() RunSchedule {
	return RunSchedule{kind: scheduleNever}
}

// Always runs the system on every tick.
func Always() RunSchedule {
	return RunSchedule{kind: scheduleAlways}
}

// SingleCall runs the system exactly once.
func SingleCall() RunSchedule {
	return RunSchedule{kind: scheduleSingleCall}
}

// ForNUpdates runs the system on the next n consecutive eligible ticks.
// n == 0 is the same as Never.
func ForNUpdates(n uint64) RunSchedule {
	if n == 0 {
		return Never()
	}
	return RunSchedule{kind: scheduleForNUpdates, remaining: n}
}

// EveryNUpdates runs the system on the first eligible tick and every n-th
// one after that. n is clamped to at least 1.
func EveryNUpdates(n uint64) RunSchedule {
	if n < 1 {
		n = 1
	}
	// The counter starts at a multiple of the interval so the first tick
	// runs; after a run it resets to 1, never 0, so "counter is a multiple"
	// stays meaningful even after the counter wraps.
	return RunSchedule{kind: scheduleEveryNUpdates, interval: n, counter: n}
}

// tick advances the state machine by one eligible tick and reports whether
// the system runs now.
func (s *RunSchedule) tick() bool {
	switch s.kind {
	case scheduleAlways:
		return true
	case scheduleSingleCall:
		s.kind = scheduleNever
		return true
	case scheduleForNUpdates:
		if s.remaining <= 1 {
			s.kind = scheduleNever
		} else {
			s.remaining--
		}
		return true
	case scheduleEveryNUpdates:
		if s.counter%s.interval == 0 {
			s.counter = 1
			return true
		}
		s.counter++
		return false
	default:
		return false
	}
}

// expired reports whether the schedule reached its terminal state.
func (s *RunSchedule) expired() bool {
	return s.kind == scheduleNever
}

type systemEntry struct {
	name     string
	fn       System
	schedule RunSchedule
	gate     Gate
}

// systemManager owns the registered systems and runs them. Execution order
// is registration order and is never reshuffled; there is no parallelism.
// Exactly one system's context is alive at any moment, which is what makes
// the mutable aliasing into World and Game safe.
type systemManager struct {
	// registered systems in the order they were registered. A list, not a
	// map: maps in Go are unordered and order is significant here.
	registered []systemEntry

	// currentSystem is the name of the system currently running, or "" when
	// no system is running.
	currentSystem string

	logger zerolog.Logger
}

func newSystemManager(logger zerolog.Logger) *systemManager {
	return &systemManager{
		registered: make([]systemEntry, 0),
		logger:     logger.With().Str("module", "system_manager").Logger(),
	}
}

// systemName derives a registration name from the function symbol.
func systemName(system System) string {
	return filepath.Base(runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name())
}

// register adds systems with a shared schedule and gate, all or nothing:
// a duplicate name anywhere in the batch registers none of them.
func (m *systemManager) register(schedule RunSchedule, gate Gate, systems ...System) error {
	toRegister := make([]systemEntry, 0, len(systems))
	for _, system := range systems {
		name := systemName(system)
		if slices.ContainsFunc(toRegister, func(e systemEntry) bool { return e.name == name }) {
			return eris.Wrapf(ErrDuplicate, "duplicate system %q in slice", name)
		}
		if slices.ContainsFunc(m.registered, func(e systemEntry) bool { return e.name == name }) {
			return eris.Wrapf(ErrDuplicate, "system %q is already registered", name)
		}
		toRegister = append(toRegister, systemEntry{name: name, fn: system, schedule: schedule, gate: gate})
	}
	m.registered = append(m.registered, toRegister...)
	return nil
}

// registerNamed adds one system under an explicit name instead of the
// reflected one.
func (m *systemManager) registerNamed(name string, system System, schedule RunSchedule, gate Gate) error {
	if slices.ContainsFunc(m.registered, func(e systemEntry) bool { return e.name == name }) {
		return eris.Wrapf(ErrDuplicate, "system %q is already registered", name)
	}
	m.registered = append(m.registered, systemEntry{name: name, fn: system, schedule: schedule, gate: gate})
	return nil
}

// runSystems executes one pass over the registered systems. For each system
// the gate is evaluated first; only if it passes is the schedule consulted;
// only if both agree does the body run, with a context scoped to that single
// invocation. Any gate or body failure aborts the remaining systems of this
// pass and surfaces as ErrUnknown. After a full pass, dead systems are
// pruned.
func (m *systemManager) runSystems(w *World, game Game) error {
	for i := range m.registered {
		entry := &m.registered[i]
		m.currentSystem = entry.name

		if entry.gate != nil {
			runnable, err := entry.gate(game)
			if err != nil {
				m.logger.Error().Err(err).Str("system", entry.name).Msg("system gate failed")
				m.currentSystem = ""
				return eris.Wrapf(ErrUnknown, "gate of system %q failed, aborting tick", entry.name)
			}
			if !runnable {
				continue
			}
		}
		if !entry.schedule.tick() {
			continue
		}

		wCtx := newWorldContext(w, game, entry.name)
		if err := entry.fn(wCtx); err != nil {
			m.logger.Error().Err(err).Str("system", entry.name).Msg("system failed")
			m.currentSystem = ""
			return eris.Wrapf(ErrUnknown, "system %q failed, aborting tick", entry.name)
		}
	}
	m.currentSystem = ""
	m.prune()
	return nil
}

// prune compacts expired systems out, preserving registration order.
func (m *systemManager) prune() {
	kept := m.registered[:0]
	for _, entry := range m.registered {
		if entry.schedule.expired() {
			m.logger.Debug().Str("system", entry.name).Msg("pruning expired system")
			continue
		}
		kept = append(kept, entry)
	}
	m.registered = kept
}

// GetRegisteredSystems returns the names of all registered systems in
// registration order.
func (m *systemManager) GetRegisteredSystems() []string {
	names := make([]string, 0, len(m.registered))
	for _, entry := range m.registered {
		names = append(names, entry.name)
	}
	return names
}

// GetCurrentSystem returns the name of the system currently running, or an
// empty string if none is.
func (m *systemManager) GetCurrentSystem() string {
	return m.currentSystem
}
