package config

import (
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// RunnerConfig is everything the step needs from the host environment
// besides the INPUT_* parameters themselves.
type RunnerConfig struct {
	// RunID tags every log line of this invocation.
	RunID string
	// Workspace is the checkout root; relative task-definition paths
	// resolve against it.
	Workspace string
	// OutputFile receives name=value output lines when set.
	OutputFile string
	// Debug enables verbose diagnostics (submitted documents, raw
	// responses).
	Debug bool
}

// LoadRunnerConfig reads the runner environment. A .env file in the
// working directory is honored when present, which keeps local runs of
// the step identical to CI runs.
func LoadRunnerConfig() *RunnerConfig {
	_ = godotenv.Load()

	workspace := getEnvironmentValue("CI_WORKSPACE", "")
	if workspace == "" {
		if wd, err := os.Getwd(); err == nil {
			workspace = wd
		}
	}

	return &RunnerConfig{
		RunID:      uuid.NewString(),
		Workspace:  workspace,
		OutputFile: getEnvironmentValue("CI_OUTPUT_FILE", ""),
		Debug:      getEnvironmentValue("RUNNER_DEBUG", "") == "1",
	}
}

func getEnvironmentValue(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
