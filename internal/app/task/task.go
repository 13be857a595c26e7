package task

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/player"
	"tilebot/internal/domain/world"
)

// Status of one task step.
type Status int

const (
	StatusRunning Status = iota
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason is the structured failure code reported with a status transition.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonResourceUnavailable Reason = "resource_unavailable"
	ReasonActionTimeout       Reason = "action_timeout"
	ReasonFatalInconsistency  Reason = "fatal_inconsistency"
)

// Env is what a task sees during one step: the tick clock, the grid
// generation published for this tick, and a read snapshot of the player.
// Tasks never hold on to an Env across steps.
type Env struct {
	Now     time.Time
	Grid    *world.Snapshot
	Costs   world.CostModel
	Player  *player.State
	Log     logrus.FieldLogger
	Metrics ports.TaskMetrics
}

// Result of one step. Emitted actions are committed to the session's
// outbound queue in order.
type Result struct {
	Status  Status
	Reason  Reason
	Actions []ports.Action
}

func running(actions ...ports.Action) Result {
	return Result{Status: StatusRunning, Actions: actions}
}

func done() Result {
	return Result{Status: StatusDone}
}

func failed(reason Reason) Result {
	return Result{Status: StatusFailed, Reason: reason}
}

// Task is the closed set of behaviors a session can run: PathFinder,
// Explorer, Drinker. The unexported method seals the set so a missing
// variant in a type switch is a compile-time smell, not a runtime surprise.
type Task interface {
	Name() string
	// Step advances the task by one tick. Non-reentrant per session.
	Step(ctx context.Context, env Env) Result
	// Cancel runs between steps only and returns compensating actions
	// needed to leave the player in a consistent state.
	Cancel(env Env) []ports.Action
	sealed()
}

var (
	_ Task = (*PathFinder)(nil)
	_ Task = (*Explorer)(nil)
	_ Task = (*Drinker)(nil)
)
