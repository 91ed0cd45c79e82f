/*
A wrapper around the os/exec package that supports timeouts and testing.

Example usage:

Simple command with argument:

	err := exec.Run(ctx, &exec.Command{
		Name: "touch",
		Args: []string{file},
	})

More complicated example:

	output := bytes.Buffer{}
	err := exec.Run(ctx, &exec.Command{
		Name: "make",
		Args: []string{"all"},
		// Set environment:
		Env: []string{fmt.Sprintf("GOPATH=%s", projectGoPath)},
		// Set working directory:
		Dir: projectDir,
		// Capture output:
		CombinedOutput: &output,
		// Set a timeout:
		Timeout: 10*time.Minute,
	})

Inject a Run function for testing:

	mock := exec.CommandCollector{}
	ctx := exec.NewContext(context.Background(), mock.Run)
	TestCodeCallingRun(ctx)
	assert.Equal(t, "touch", mock.Commands()[0].Name)
*/
package exec

import (
	"context"
	"io"
	"os"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"go.skia.org/perfbisect/go/sklog"
)

// WriteLog implements the io.Writer interface and writes to the given log function.
type WriteLog struct {
	LogFunc func(format string, args ...interface{})
}

func (wl WriteLog) Write(p []byte) (n int, err error) {
	wl.LogFunc("%s", string(p))
	return len(p), nil
}

var (
	WriteInfoLog  = WriteLog{LogFunc: sklog.Infof}
	WriteErrorLog = WriteLog{LogFunc: sklog.Errorf}
)

type Command struct {
	// Name of the command, as passed to osexec.Command. Can be the path to a binary or the
	// name of a command that osexec.Lookpath can find.
	Name string
	// Arguments of the command, not including Name.
	Args []string
	// The environment of the process. If nil, the current process's environment is used.
	Env []string
	// If Env is non-nil, adds the current process's PATH to Env.
	InheritPath bool
	// The working directory of the command. If nil, runs in the current process's current
	// directory.
	Dir string
	// See docs for osexec.Cmd.Stdin.
	Stdin io.Reader
	// If true, duplicates stdout of the command to WriteInfoLog.
	LogStdout bool
	// Sends the stdout of the command to this Writer, e.g. os.File or bytes.Buffer.
	Stdout io.Writer
	// If true, duplicates stderr of the command to WriteErrorLog.
	LogStderr bool
	// Sends the stderr of the command to this Writer, e.g. os.File or bytes.Buffer.
	Stderr io.Writer
	// Sends the combined stdout and stderr of the command to this Writer, in addition to
	// Stdout and Stderr.
	CombinedOutput io.Writer
	// Time limit to wait for the command to finish. No limit if not specified.
	Timeout time.Duration
}

// DebugString returns the command line, with the environment if any.
func DebugString(command *Command) string {
	rv := strings.Join(append([]string{command.Name}, command.Args...), " ")
	if len(command.Env) > 0 {
		rv = strings.Join(command.Env, " ") + " " + rv
	}
	return rv
}

// Given io.Writers or nils, return a single writer that writes to all, or nil if no non-nil
// writers. Does not handle non-nil interface containing a nil value.
func squashWriters(writers ...io.Writer) io.Writer {
	nonNil := []io.Writer{}
	for _, writer := range writers {
		if writer != nil {
			nonNil = append(nonNil, writer)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return io.MultiWriter(nonNil...)
	}
}

func createCmd(ctx context.Context, command *Command) *osexec.Cmd {
	cmd := osexec.CommandContext(ctx, command.Name, command.Args...)
	if len(command.Env) != 0 {
		cmd.Env = command.Env
		if command.InheritPath {
			cmd.Env = append(cmd.Env, "PATH="+os.Getenv("PATH"))
		}
	}
	cmd.Dir = command.Dir
	cmd.Stdin = command.Stdin
	var stdoutLog io.Writer
	if command.LogStdout {
		stdoutLog = WriteInfoLog
	}
	cmd.Stdout = squashWriters(stdoutLog, command.Stdout, command.CombinedOutput)
	var stderrLog io.Writer
	if command.LogStderr {
		stderrLog = WriteErrorLog
	}
	cmd.Stderr = squashWriters(stderrLog, command.Stderr, command.CombinedOutput)
	return cmd
}

// DefaultRun runs the command on the local machine.
func DefaultRun(ctx context.Context, command *Command) error {
	if command.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}
	cmd := createCmd(ctx, command)
	sklog.Infof("Executing %s", DebugString(command))
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "Unable to start command %s", DebugString(command))
	}
	err := cmd.Wait()
	if command.Timeout != 0 && ctx.Err() == context.DeadlineExceeded {
		return errors.Errorf("Command killed since it took longer than %f secs", command.Timeout.Seconds())
	}
	if err != nil {
		sklog.Warningf("Command exited with %s: %s", err, DebugString(command))
	}
	return err
}

type contextKeyType string

const contextKey contextKeyType = "execRun"

// NewContext returns a context whose commands are run by runFn. Tests use
// it to avoid running real processes.
func NewContext(ctx context.Context, runFn func(context.Context, *Command) error) context.Context {
	return context.WithValue(ctx, contextKey, runFn)
}

// Run runs command and waits for it to finish, using the run function of
// ctx if one was installed by NewContext. If a timeout was specified,
// returns an error once the command has exceeded that timeout.
func Run(ctx context.Context, command *Command) error {
	if runFn, ok := ctx.Value(contextKey).(func(context.Context, *Command) error); ok {
		return runFn(ctx, command)
	}
	return DefaultRun(ctx, command)
}

// ExitCode returns the exit code carried by err, if any. The error returned
// by Run for a command that exited unsuccessfully has one.
func ExitCode(err error) (int, bool) {
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}
