package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"dev.opstack.ecs-run-task/internal/domain"
)

const testTaskDefinition = `
family: web
networkMode: awsvpc
cpu: "256"
memory: "512"
requiresCompatibilities:
  - FARGATE
containerDefinitions:
  - name: app
    image: busybox
    essential: true
`

type fakeContext struct {
	inputs    map[string]string
	workspace string
	outputs   []string
	logs      []string
}

func (f *fakeContext) GetInput(name string) string { return f.inputs[name] }

func (f *fakeContext) SetOutput(name, value string) error {
	f.outputs = append(f.outputs, name+"="+value)
	return nil
}

func (f *fakeContext) WorkspaceRoot() string { return f.workspace }

func (f *fakeContext) Debug(format string, args ...interface{}) {
	f.logs = append(f.logs, "DEBUG "+fmt.Sprintf(format, args...))
}

func (f *fakeContext) Info(format string, args ...interface{}) {
	f.logs = append(f.logs, "INFO "+fmt.Sprintf(format, args...))
}

func (f *fakeContext) Warning(format string, args ...interface{}) {
	f.logs = append(f.logs, "WARNING "+fmt.Sprintf(format, args...))
}

type fakeEcs struct {
	registerErr error
	runOut      *ecs.RunTaskOutput
	runErr      error
	describeOut *ecs.DescribeTasksOutput
	describeErr error

	registerCalled bool
	runCalled      bool
	describeCalled bool
	lastRunInput   *ecs.RunTaskInput
}

func (f *fakeEcs) RegisterTaskDefinition(ctx context.Context, params *ecs.RegisterTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.RegisterTaskDefinitionOutput, error) {
	f.registerCalled = true
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	arn := fmt.Sprintf("arn:aws:ecs:us-east-1:000000000000:task-definition/%s:1", aws.ToString(params.Family))
	return &ecs.RegisterTaskDefinitionOutput{
		TaskDefinition: &ecstypes.TaskDefinition{TaskDefinitionArn: aws.String(arn)},
	}, nil
}

func (f *fakeEcs) RunTask(ctx context.Context, params *ecs.RunTaskInput, optFns ...func(*ecs.Options)) (*ecs.RunTaskOutput, error) {
	f.runCalled = true
	f.lastRunInput = params
	return f.runOut, f.runErr
}

func (f *fakeEcs) DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error) {
	f.describeCalled = true
	return f.describeOut, f.describeErr
}

type fakeWaiter struct {
	err      error
	called   bool
	deadline time.Duration
}

func (f *fakeWaiter) Wait(ctx context.Context, params *ecs.DescribeTasksInput, maxWaitDur time.Duration, optFns ...func(*ecs.TasksStoppedWaiterOptions)) error {
	f.called = true
	f.deadline = maxWaitDur
	return f.err
}

func launchedTasks(arns ...string) *ecs.RunTaskOutput {
	out := &ecs.RunTaskOutput{}
	for _, arn := range arns {
		out.Tasks = append(out.Tasks, ecstypes.Task{TaskArn: aws.String(arn)})
	}
	return out
}

func stoppedTasks(exitCodes map[string]int32) *ecs.DescribeTasksOutput {
	task := ecstypes.Task{TaskArn: aws.String("arn:task/a"), LastStatus: aws.String("STOPPED")}
	for name, code := range exitCodes {
		task.Containers = append(task.Containers, ecstypes.Container{
			Name:     aws.String(name),
			ExitCode: aws.Int32(code),
		})
	}
	return &ecs.DescribeTasksOutput{Tasks: []ecstypes.Task{task}}
}

func newTestRunner(t *testing.T, inputs map[string]string, api *fakeEcs, w *fakeWaiter) (*Runner, *fakeContext) {
	t.Helper()

	workspace := t.TempDir()
	if err := os.WriteFile(filepath.Join(workspace, "taskdef.yml"), []byte(testTaskDefinition), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := inputs["task-definition"]; !ok {
		inputs["task-definition"] = "taskdef.yml"
	}

	rc := &fakeContext{inputs: inputs, workspace: workspace}
	return New(rc, api, w, domain.DefaultWaitPolicy(), "us-east-1"), rc
}

func baseInputs() map[string]string {
	return map[string]string{
		"count":           "1",
		"subnets":         "subnet-a|subnet-b",
		"security-groups": "sg-1",
	}
}

func TestExecuteSuccessWithWait(t *testing.T) {
	inputs := baseInputs()
	inputs["wait-for-finish"] = "true"

	api := &fakeEcs{
		runOut:      launchedTasks("arn:task/a"),
		describeOut: stoppedTasks(map[string]int32{"app": 0}),
	}
	w := &fakeWaiter{}
	r, rc := newTestRunner(t, inputs, api, w)

	if err := r.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !w.called {
		t.Error("waiter should have been used")
	}
	if w.deadline != 30*time.Minute {
		t.Errorf("waiter deadline = %s, want 30m", w.deadline)
	}

	wantOutputs := []string{
		"task-definition-arn=arn:aws:ecs:us-east-1:000000000000:task-definition/web:1",
		"run-task-arn=arn:task/a",
	}
	for _, want := range wantOutputs {
		found := false
		for _, out := range rc.outputs {
			if out == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing output %q in %v", want, rc.outputs)
		}
	}
}

func TestExecuteFailsOnNonZeroExitCode(t *testing.T) {
	inputs := baseInputs()
	inputs["wait-for-finish"] = "true"

	describe := &ecs.DescribeTasksOutput{Tasks: []ecstypes.Task{{
		TaskArn: aws.String("arn:task/a"),
		Containers: []ecstypes.Container{
			{Name: aws.String("app"), ExitCode: aws.Int32(137), Reason: aws.String("OutOfMemoryError")},
			{Name: aws.String("sidecar"), ExitCode: aws.Int32(0)},
		},
	}}}
	api := &fakeEcs{runOut: launchedTasks("arn:task/a"), describeOut: describe}
	r, _ := newTestRunner(t, inputs, api, &fakeWaiter{})

	err := r.Execute(context.Background())
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, domain.ErrOutcome) {
		t.Errorf("error %v should be an outcome failure", err)
	}
	if !strings.Contains(err.Error(), "OutOfMemoryError") {
		t.Errorf("error %q should contain the container reason", err.Error())
	}
}

func TestExecuteFireAndForget(t *testing.T) {
	// wait-for-finish unset: the run succeeds right after launch with no
	// verification of the eventual task outcome.
	api := &fakeEcs{runOut: launchedTasks("arn:task/a", "arn:task/b")}
	w := &fakeWaiter{}
	r, rc := newTestRunner(t, baseInputs(), api, w)

	if err := r.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if w.called {
		t.Error("waiter must not run when wait-for-finish is unset")
	}
	if api.describeCalled {
		t.Error("outcome evaluation must not run when wait-for-finish is unset")
	}

	got := 0
	for _, out := range rc.outputs {
		if strings.HasPrefix(out, "run-task-arn=") {
			got++
		}
	}
	if got != 2 {
		t.Errorf("want 2 run-task-arn outputs, got %d: %v", got, rc.outputs)
	}
}

func TestExecuteAbortsOnLaunchFailure(t *testing.T) {
	inputs := baseInputs()
	inputs["wait-for-finish"] = "true"

	api := &fakeEcs{runOut: &ecs.RunTaskOutput{
		Tasks: []ecstypes.Task{{TaskArn: aws.String("arn:task/ok")}},
		Failures: []ecstypes.Failure{
			{Arn: aws.String("X"), Reason: aws.String("RESOURCE:MEMORY")},
		},
	}}
	w := &fakeWaiter{}
	r, _ := newTestRunner(t, inputs, api, w)

	err := r.Execute(context.Background())
	if err == nil {
		t.Fatal("expected launch failure")
	}
	if !errors.Is(err, domain.ErrLaunch) {
		t.Errorf("error %v should be a launch failure", err)
	}
	for _, part := range []string{"X", "RESOURCE:MEMORY"} {
		if !strings.Contains(err.Error(), part) {
			t.Errorf("error %q should contain %q", err.Error(), part)
		}
	}
	if w.called || api.describeCalled {
		t.Error("launch failure must abort before waiting and evaluation")
	}
}

func TestExecuteAbortsOnRegistrationFailure(t *testing.T) {
	api := &fakeEcs{registerErr: errors.New("ClientException: invalid definition")}
	r, _ := newTestRunner(t, baseInputs(), api, &fakeWaiter{})

	err := r.Execute(context.Background())
	if !errors.Is(err, domain.ErrRegistration) {
		t.Fatalf("error %v should be a registration failure", err)
	}
	if api.runCalled {
		t.Error("launch must be skipped when registration fails")
	}
}

func TestExecuteTimeout(t *testing.T) {
	inputs := baseInputs()
	inputs["wait-for-finish"] = "true"
	inputs["cluster"] = "ci-cluster"

	api := &fakeEcs{runOut: launchedTasks("arn:task/a")}
	w := &fakeWaiter{err: errors.New("exceeded max wait time for TasksStopped waiter")}
	r, _ := newTestRunner(t, inputs, api, w)

	err := r.Execute(context.Background())
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("error %v should be a timeout", err)
	}
	if !strings.Contains(err.Error(), "ci-cluster") {
		t.Errorf("timeout message %q should name the cluster", err.Error())
	}
	if api.describeCalled {
		t.Error("evaluation must not run after a timeout")
	}
}

func TestExecuteBuildsFargateLaunchRequest(t *testing.T) {
	inputs := baseInputs()
	inputs["count"] = "3"
	inputs["started-by"] = "nightly-build"

	api := &fakeEcs{runOut: launchedTasks("arn:task/a", "arn:task/b", "arn:task/c")}
	r, _ := newTestRunner(t, inputs, api, &fakeWaiter{})

	if err := r.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	in := api.lastRunInput
	if in.LaunchType != ecstypes.LaunchTypeFargate {
		t.Errorf("launch type = %s, want FARGATE", in.LaunchType)
	}
	if aws.ToInt32(in.Count) != 3 {
		t.Errorf("count = %d, want 3", aws.ToInt32(in.Count))
	}
	if aws.ToString(in.StartedBy) != "nightly-build" {
		t.Errorf("started-by = %q", aws.ToString(in.StartedBy))
	}
	if aws.ToString(in.Cluster) != DefaultCluster {
		t.Errorf("cluster = %q, want default", aws.ToString(in.Cluster))
	}
	vpc := in.NetworkConfiguration.AwsvpcConfiguration
	if len(vpc.Subnets) != 2 || vpc.Subnets[0] != "subnet-a" {
		t.Errorf("subnets = %v", vpc.Subnets)
	}
	if len(vpc.SecurityGroups) != 1 || vpc.SecurityGroups[0] != "sg-1" {
		t.Errorf("security groups = %v", vpc.SecurityGroups)
	}
}
