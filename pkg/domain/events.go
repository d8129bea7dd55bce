package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart   EventType = "run_start"
	EventRunEnd     EventType = "run_end"
	EventSystemDone EventType = "system_done"
	EventDiagnostic EventType = "diagnostic"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent marks the start or end of a simulation run.
type RunEvent struct {
	EventBase
	Method   string        `json:"method"`
	Systems  int           `json:"systems"`
	Pathways int           `json:"pathways"`
	Faults   int           `json:"faults"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// SystemEvent reports a spin system whose pathways have been resolved.
type SystemEvent struct {
	EventBase
	System   int    `json:"system"`
	Name     string `json:"name,omitempty"`
	Pathways int    `json:"pathways"`
}

// DiagnosticEvent reports a recoverable resolution outcome, such as a
// channel missing from a spin system.
type DiagnosticEvent struct {
	EventBase
	System int    `json:"system"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// LifecycleHooks defines callbacks for simulation observability.
// Hooks run on the caller's goroutine, never from engine workers.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnRunEnd     func(context.Context, *RunEvent)
	OnSystemDone func(context.Context, *SystemEvent)
	OnDiagnostic func(context.Context, *DiagnosticEvent)
}
