package exec

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquashWriters(t *testing.T) {
	test := func(input ...*bytes.Buffer) {
		writers := make([]io.Writer, len(input))
		for i, buffer := range input {
			if buffer != nil {
				writers[i] = buffer
			}
		}
		squashed := squashWriters(writers...)
		require.NotNil(t, squashed)
		_, err := squashed.Write([]byte("foobar"))
		require.NoError(t, err)
		for _, buffer := range input {
			if buffer != nil {
				assert.Equal(t, "foobar", buffer.String())
			}
		}
	}
	assert.Nil(t, squashWriters())
	assert.Nil(t, squashWriters(nil, nil))
	test(&bytes.Buffer{})
	test(&bytes.Buffer{}, nil)
	test(nil, &bytes.Buffer{}, &bytes.Buffer{})
}

func TestDebugString(t *testing.T) {
	assert.Equal(t, "touch /tmp/file", DebugString(&Command{Name: "touch", Args: []string{"/tmp/file"}}))
	assert.Equal(t, "A=1 env", DebugString(&Command{Name: "env", Env: []string{"A=1"}}))
}

func TestRun_Basic(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ran")
	require.NoError(t, Run(context.Background(), &Command{
		Name: "touch",
		Args: []string{file},
	}))
	_, err := os.Stat(file)
	assert.NoError(t, err)
}

func TestRun_EnvDirAndOutput(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	require.NoError(t, Run(context.Background(), &Command{
		Name:        "sh",
		Args:        []string{"-c", "echo $GREETING; pwd"},
		Env:         []string{"GREETING=hello"},
		InheritPath: true,
		Dir:         dir,
		Stdout:      &stdout,
	}))
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "hello", lines[0])
	// The temp dir may be reached through a symlink.
	assert.Equal(t, filepath.Base(dir), filepath.Base(lines[1]))
}

func TestRun_NonZeroExit_ExitCode(t *testing.T) {
	err := Run(context.Background(), &Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	code, ok := ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestRun_NotFound_NoExitCode(t *testing.T) {
	err := Run(context.Background(), &Command{Name: "/does/not/exist"})
	require.Error(t, err)
	_, ok := ExitCode(err)
	assert.False(t, ok)
}

func TestRun_Timeout(t *testing.T) {
	err := Run(context.Background(), &Command{
		Name:    "sleep",
		Args:    []string{"10"},
		Timeout: 50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "took longer than")
}

func TestRun_InjectedRunFn(t *testing.T) {
	mock := CommandCollector{}
	mock.SetDelegateRun(func(ctx context.Context, c *Command) error {
		return &ExitError{Code: 7}
	})
	ctx := NewContext(context.Background(), mock.Run)

	err := Run(ctx, &Command{Name: "touch", Args: []string{"/tmp/file"}})

	code, ok := ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 7, code)
	require.Len(t, mock.Commands(), 1)
	assert.Equal(t, "touch /tmp/file", DebugString(mock.Commands()[0]))
	mock.ClearCommands()
	assert.Empty(t, mock.Commands())
}
