package runner

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"dev.opstack.ecs-run-task/internal/adapters/awsecs"
	"dev.opstack.ecs-run-task/internal/domain"
	"dev.opstack.ecs-run-task/internal/ports"
)

// Runner drives the sequential pipeline: load -> register -> launch ->
// (optionally) wait -> (optionally) evaluate. Every stage either returns
// a value or a terminal error; there is no retry and no rollback. A
// timeout or a skipped wait leaves launched tasks running remotely —
// that gap is part of the step's contract.
type Runner struct {
	rc     ports.RunContext
	api    ports.EcsAPI
	waiter ports.TasksStoppedWaiter
	policy domain.WaitPolicy
	region string
}

func New(rc ports.RunContext, api ports.EcsAPI, waiter ports.TasksStoppedWaiter, policy domain.WaitPolicy, region string) *Runner {
	return &Runner{
		rc:     rc,
		api:    api,
		waiter: waiter,
		policy: policy,
		region: region,
	}
}

// Execute performs one single-attempt run. The returned error, if any,
// is the run's one-line failure message.
func (r *Runner) Execute(ctx context.Context) error {
	run := domain.NewRun()
	if err := r.execute(ctx, run); err != nil {
		run.Fail()
		return err
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, run *domain.Run) error {
	inputs, err := ParseInputs(r.rc, r.policy)
	if err != nil {
		return err
	}

	arn, err := r.register(ctx, run, inputs)
	if err != nil {
		return err
	}

	taskArns, err := r.launch(ctx, run, inputs, arn)
	if err != nil {
		return err
	}

	if !inputs.WaitForFinish {
		r.rc.Info("not waiting for tasks to finish")
		return run.Advance(domain.Succeeded)
	}

	if err := r.waitStopped(ctx, run, inputs, taskArns); err != nil {
		return err
	}

	return r.evaluate(ctx, run, inputs, taskArns)
}

func (r *Runner) register(ctx context.Context, run *domain.Run, inputs *Inputs) (string, error) {
	if err := run.Advance(domain.Registering); err != nil {
		return "", err
	}

	input, cleanedJSON, err := LoadTaskDefinition(inputs.TaskDefinitionPath, r.rc.WorkspaceRoot())
	if err != nil {
		return "", err
	}
	r.rc.Debug("registering task definition: %s", cleanedJSON)

	out, err := r.api.RegisterTaskDefinition(ctx, input)
	if err != nil {
		r.rc.Debug("rejected task definition document: %s", cleanedJSON)
		return "", domain.RegistrationErr(err)
	}

	arn := aws.ToString(out.TaskDefinition.TaskDefinitionArn)
	r.rc.Info("registered task definition %s", arn)
	if err := r.rc.SetOutput("task-definition-arn", arn); err != nil {
		return "", err
	}

	if err := run.Advance(domain.Registered); err != nil {
		return "", err
	}
	return arn, nil
}

func (r *Runner) launch(ctx context.Context, run *domain.Run, inputs *Inputs, definitionArn string) ([]string, error) {
	if err := run.Advance(domain.Launching); err != nil {
		return nil, err
	}

	out, err := r.api.RunTask(ctx, &ecs.RunTaskInput{
		TaskDefinition: aws.String(definitionArn),
		Cluster:        aws.String(inputs.Cluster),
		Count:          aws.Int32(inputs.Count),
		StartedBy:      aws.String(inputs.StartedBy),
		LaunchType:     ecstypes.LaunchTypeFargate,
		NetworkConfiguration: &ecstypes.NetworkConfiguration{
			AwsvpcConfiguration: &ecstypes.AwsVpcConfiguration{
				Subnets:        inputs.Subnets,
				SecurityGroups: inputs.SecurityGroups,
			},
		},
	})
	if err != nil {
		return nil, domain.Launchf("%s", awsecs.FormatAPIError(err))
	}

	// Partial success is still fatal: any reported failure aborts the
	// run before waiting, even if other instances launched.
	if len(out.Failures) > 0 {
		failures := make([]string, 0, len(out.Failures))
		for _, f := range out.Failures {
			lf := domain.LaunchFailure{
				Arn:    aws.ToString(f.Arn),
				Reason: aws.ToString(f.Reason),
			}
			failures = append(failures, lf.String())
		}
		return nil, domain.Launchf("%s", strings.Join(failures, "; "))
	}

	taskArns := make([]string, 0, len(out.Tasks))
	for _, task := range out.Tasks {
		taskArns = append(taskArns, aws.ToString(task.TaskArn))
	}
	for _, taskArn := range taskArns {
		if err := r.rc.SetOutput("run-task-arn", taskArn); err != nil {
			return nil, err
		}
	}

	r.rc.Info("launched %d task(s) on cluster %q", len(taskArns), inputs.Cluster)
	r.rc.Info("watch the tasks at %s", awsecs.ClusterTasksURL(r.region, inputs.Cluster))

	if err := run.Advance(domain.Launched); err != nil {
		return nil, err
	}
	return taskArns, nil
}

func (r *Runner) waitStopped(ctx context.Context, run *domain.Run, inputs *Inputs, taskArns []string) error {
	if err := run.Advance(domain.Waiting); err != nil {
		return err
	}

	deadline := r.policy.Deadline(inputs.WaitMinutes)
	r.rc.Info("waiting up to %s for %d task(s) to stop", deadline, len(taskArns))

	err := r.waiter.Wait(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(inputs.Cluster),
		Tasks:   taskArns,
	}, deadline)
	if err != nil {
		// Launched tasks are left running; the step performs no
		// stop-on-timeout.
		return domain.TimeoutErr(inputs.Cluster, err)
	}

	return run.Advance(domain.StoppedAll)
}

func (r *Runner) evaluate(ctx context.Context, run *domain.Run, inputs *Inputs, taskArns []string) error {
	if err := run.Advance(domain.Evaluating); err != nil {
		return err
	}

	out, err := r.api.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(inputs.Cluster),
		Tasks:   taskArns,
	})
	if err != nil {
		return domain.Outcomef("describing stopped tasks: %s", awsecs.FormatAPIError(err))
	}

	outcomes := make([]domain.TaskOutcome, 0, len(out.Tasks))
	for _, task := range out.Tasks {
		outcome := domain.TaskOutcome{TaskArn: aws.ToString(task.TaskArn)}
		for _, c := range task.Containers {
			outcome.Containers = append(outcome.Containers, domain.ContainerResult{
				Name:     aws.ToString(c.Name),
				ExitCode: c.ExitCode,
				Reason:   aws.ToString(c.Reason),
			})
		}
		outcomes = append(outcomes, outcome)
		r.rc.Debug("task %s stopped: %s", outcome.TaskArn, aws.ToString(task.StoppedReason))
	}

	if reasons := domain.FailureReasons(outcomes); len(reasons) > 0 {
		return domain.Outcomef("%s", strings.Join(reasons, "; "))
	}

	r.rc.Info("all containers exited successfully")
	return run.Advance(domain.Succeeded)
}
