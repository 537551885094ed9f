package main

import (
	"context"
	"log"
	"os"

	"dev.opstack.ecs-run-task/config"
	"dev.opstack.ecs-run-task/internal/adapters/awsecs"
	"dev.opstack.ecs-run-task/internal/adapters/cienv"
	"dev.opstack.ecs-run-task/internal/application/runner"
	"dev.opstack.ecs-run-task/internal/domain"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadRunnerConfig()
	rc := cienv.New(cienv.Options{
		Workspace:  cfg.Workspace,
		OutputPath: cfg.OutputFile,
		Debug:      cfg.Debug,
		RunID:      cfg.RunID,
	})

	client, err := awsecs.NewClient(ctx)
	if err != nil {
		log.Fatalf("failed to configure ECS client: %v", err)
	}

	policy := domain.DefaultWaitPolicy()
	waiter := awsecs.NewStoppedWaiter(client.Ecs, policy)

	r := runner.New(rc, client.Ecs, waiter, policy, client.Region)
	if err := r.Execute(ctx); err != nil {
		rc.Warning("run failed: %v", err)
		os.Exit(1)
	}
}
