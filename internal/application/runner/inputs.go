package runner

import (
	"strconv"
	"strings"

	"dev.opstack.ecs-run-task/internal/domain"
	"dev.opstack.ecs-run-task/internal/ports"
)

const (
	// DefaultCluster is the sentinel ECS cluster name used when the
	// cluster parameter is unset.
	DefaultCluster = "default"
	// DefaultStartedBy tags launched tasks with the agent identity when
	// no started-by parameter is given.
	DefaultStartedBy = "ecs-run-task-ci"
)

// Inputs is the canonicalized invocation: every parameter parsed,
// defaulted and validated before any remote call is made.
type Inputs struct {
	TaskDefinitionPath string
	Cluster            string
	Count              int32
	StartedBy          string
	WaitForFinish      bool
	WaitMinutes        int
	Subnets            []string
	SecurityGroups     []string
}

// ParseInputs reads the run parameters from the host context. Missing
// required parameters and unparsable values are reported as parse
// errors so the run fails before touching the remote service.
func ParseInputs(rc ports.RunContext, policy domain.WaitPolicy) (*Inputs, error) {
	in := &Inputs{
		TaskDefinitionPath: rc.GetInput("task-definition"),
		Cluster:            rc.GetInput("cluster"),
		StartedBy:          rc.GetInput("started-by"),
	}
	if in.TaskDefinitionPath == "" {
		return nil, domain.Parsef("task-definition is required")
	}
	if in.Cluster == "" {
		in.Cluster = DefaultCluster
	}
	if in.StartedBy == "" {
		in.StartedBy = DefaultStartedBy
	}

	rawCount := rc.GetInput("count")
	if rawCount == "" {
		return nil, domain.Parsef("count is required")
	}
	count, err := strconv.ParseInt(rawCount, 10, 32)
	if err != nil || count < 1 {
		return nil, domain.Parsef("count must be a positive integer, got %q", rawCount)
	}
	in.Count = int32(count)

	// The flag is parsed case-insensitively; anything other than "true"
	// means fire-and-forget.
	in.WaitForFinish = strings.EqualFold(rc.GetInput("wait-for-finish"), "true")

	in.WaitMinutes = policy.DefaultMinutes
	if raw := rc.GetInput("wait-for-minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domain.Parsef("wait-for-minutes must be an integer, got %q", raw)
		}
		in.WaitMinutes = policy.ClampMinutes(minutes)
	}

	in.Subnets = splitPipeList(rc.GetInput("subnets"))
	if len(in.Subnets) == 0 {
		return nil, domain.Parsef("subnets is required")
	}
	in.SecurityGroups = splitPipeList(rc.GetInput("security-groups"))
	if len(in.SecurityGroups) == 0 {
		return nil, domain.Parsef("security-groups is required")
	}

	return in, nil
}

// splitPipeList splits a pipe-delimited parameter into its elements,
// trimming whitespace and dropping empties.
func splitPipeList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
