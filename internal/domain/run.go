package domain

import "fmt"

// RunState is the position of a run in its lifecycle. A run is strictly
// single-attempt: there is no transition out of a terminal state and no
// retry of any step.
type RunState int

const (
	Idle RunState = iota
	Registering
	Registered
	Launching
	Launched
	Waiting
	StoppedAll
	Evaluating
	Succeeded
	FailedRun
)

func (s RunState) String() string {
	names := []string{
		"Idle", "Registering", "Registered", "Launching", "Launched",
		"Waiting", "StoppedAll", "Evaluating", "Succeeded", "Failed",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// stateTransitionMap encodes the legal forward edges. Every non-terminal
// state may additionally short-circuit to FailedRun on error.
var stateTransitionMap = map[RunState][]RunState{
	Idle:        {Registering},
	Registering: {Registered},
	Registered:  {Launching},
	Launching:   {Launched},
	Launched:    {Waiting, Succeeded},
	Waiting:     {StoppedAll},
	StoppedAll:  {Evaluating},
	Evaluating:  {Succeeded},
	Succeeded:   {},
	FailedRun:   {},
}

func containsState(states []RunState, state RunState) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}

// ValidStateTransition reports whether src may move to dst.
func ValidStateTransition(src RunState, dst RunState) bool {
	if dst == FailedRun {
		return src != Succeeded && src != FailedRun
	}
	return containsState(stateTransitionMap[src], dst)
}

// Run tracks lifecycle state for one invocation.
type Run struct {
	state RunState
}

func NewRun() *Run {
	return &Run{state: Idle}
}

func (r *Run) State() RunState {
	return r.state
}

// Advance moves the run to dst, rejecting edges the lifecycle does not
// allow. A rejected transition indicates a pipeline bug, not a remote
// failure.
func (r *Run) Advance(dst RunState) error {
	if !ValidStateTransition(r.state, dst) {
		return fmt.Errorf("invalid run transition %s -> %s", r.state, dst)
	}
	r.state = dst
	return nil
}

// Fail short-circuits the run into the terminal failed state.
func (r *Run) Fail() {
	if r.state != Succeeded {
		r.state = FailedRun
	}
}

// TaskInstance is one launched unit, identified by its task ARN.
type TaskInstance struct {
	Arn string
}

// LaunchFailure is a per-instance failure reported by the launch call.
type LaunchFailure struct {
	Arn    string
	Reason string
}

func (f LaunchFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Arn, f.Reason)
}

// ContainerResult is the terminal (exit code, reason) pair for a single
// container of a stopped task.
type ContainerResult struct {
	Name     string
	ExitCode *int32
	Reason   string
}

// Failed reports whether the container counts against the run. A missing
// exit code on a stopped task means the container never ran; it fails the
// run only when the service supplied a reason for it.
func (c ContainerResult) Failed() bool {
	if c.ExitCode != nil {
		return *c.ExitCode != 0
	}
	return c.Reason != ""
}

// FailureReason renders the container's contribution to the aggregated
// failure message.
func (c ContainerResult) FailureReason() string {
	reason := c.Reason
	if reason == "" {
		reason = "no reason reported"
	}
	if c.ExitCode != nil {
		return fmt.Sprintf("container %q exited with code %d: %s", c.Name, *c.ExitCode, reason)
	}
	return fmt.Sprintf("container %q did not start: %s", c.Name, reason)
}

// TaskOutcome is the final per-container state of one task instance.
// An instance that reported zero containers contributes no failures.
type TaskOutcome struct {
	TaskArn    string
	Containers []ContainerResult
}

// FailureReasons flattens all containers across all outcomes and collects
// every failure reason, preserving order.
func FailureReasons(outcomes []TaskOutcome) []string {
	var reasons []string
	for _, o := range outcomes {
		for _, c := range o.Containers {
			if c.Failed() {
				reasons = append(reasons, c.FailureReason())
			}
		}
	}
	return reasons
}
