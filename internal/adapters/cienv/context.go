package cienv

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Context adapts the CI runner's environment-variable protocol to the
// ports.RunContext interface. Parameters arrive as INPUT_* variables,
// outputs are appended as name=value lines to the runner's output file,
// and log lines go to the process log with a level prefix.
type Context struct {
	workspace  string
	outputPath string
	debug      bool
	logger     *log.Logger
}

// Options are resolved by the caller (config package) so the adapter
// itself stays free of ambient environment reads beyond GetInput.
type Options struct {
	Workspace  string
	OutputPath string
	Debug      bool
	RunID      string
}

func New(opts Options) *Context {
	prefix := ""
	if opts.RunID != "" {
		prefix = fmt.Sprintf("[run %s] ", opts.RunID)
	}
	return &Context{
		workspace:  opts.Workspace,
		outputPath: opts.OutputPath,
		debug:      opts.Debug,
		logger:     log.New(os.Stderr, prefix, log.LstdFlags),
	}
}

// GetInput maps a parameter name to its INPUT_* environment variable:
// dashes become underscores and the name is upper-cased, so
// "task-definition" reads INPUT_TASK_DEFINITION.
func (c *Context) GetInput(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	return strings.TrimSpace(os.Getenv(key))
}

// SetOutput appends a name=value line to the output file. Without a
// configured file the value is printed to stdout so it still reaches
// the build log.
func (c *Context) SetOutput(name, value string) error {
	line := fmt.Sprintf("%s=%s\n", name, value)
	if c.outputPath == "" {
		_, err := fmt.Fprint(os.Stdout, line)
		return err
	}
	f, err := os.OpenFile(c.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing output %s: %w", name, err)
	}
	return nil
}

func (c *Context) WorkspaceRoot() string {
	return c.workspace
}

// Debug lines are suppressed unless the runner asked for them; they may
// carry full request documents and raw responses.
func (c *Context) Debug(format string, args ...interface{}) {
	if c.debug {
		c.logger.Printf("DEBUG "+format, args...)
	}
}

func (c *Context) Info(format string, args ...interface{}) {
	c.logger.Printf("INFO "+format, args...)
}

func (c *Context) Warning(format string, args ...interface{}) {
	c.logger.Printf("WARNING "+format, args...)
}
