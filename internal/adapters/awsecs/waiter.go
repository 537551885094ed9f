package awsecs

import (
	"github.com/aws/aws-sdk-go-v2/service/ecs"

	"dev.opstack.ecs-run-task/internal/domain"
)

// NewStoppedWaiter builds the SDK's tasks-stopped waiter pinned to the
// policy's fixed poll cadence. The waiter owns the retry loop; the only
// knobs this step turns are the interval and the overall deadline.
func NewStoppedWaiter(api ecs.DescribeTasksAPIClient, policy domain.WaitPolicy) *ecs.TasksStoppedWaiter {
	return ecs.NewTasksStoppedWaiter(api, func(o *ecs.TasksStoppedWaiterOptions) {
		o.MinDelay = policy.Interval
		o.MaxDelay = policy.Interval
	})
}
