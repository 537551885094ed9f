package ports

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ecs"
)

// EcsAPI is the subset of the ECS control plane the run needs. The
// production implementation is *ecs.Client; tests substitute a fake.
type EcsAPI interface {
	RegisterTaskDefinition(ctx context.Context, params *ecs.RegisterTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.RegisterTaskDefinitionOutput, error)
	RunTask(ctx context.Context, params *ecs.RunTaskInput, optFns ...func(*ecs.Options)) (*ecs.RunTaskOutput, error)
	DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error)
}

// TasksStoppedWaiter blocks until every task in params reaches a stopped
// state or maxWaitDur elapses. Satisfied by *ecs.TasksStoppedWaiter.
type TasksStoppedWaiter interface {
	Wait(ctx context.Context, params *ecs.DescribeTasksInput, maxWaitDur time.Duration, optFns ...func(*ecs.TasksStoppedWaiterOptions)) error
}
