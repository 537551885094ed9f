package ports

// RunContext is the host CI environment: parameter retrieval, run
// outputs and leveled logging. It is consumed as an opaque service so
// the pipeline can run against any CI runner (or a test double).
type RunContext interface {
	// GetInput returns the raw value of a run parameter, or "" when the
	// parameter is unset.
	GetInput(name string) string
	// SetOutput publishes a run output. Called once per value; list
	// outputs are published as repeated calls under the same name.
	SetOutput(name, value string) error
	// WorkspaceRoot is the directory relative input paths resolve
	// against.
	WorkspaceRoot() string

	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
}
