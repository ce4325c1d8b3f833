package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// LaunchSpec describes the backend command line.
type LaunchSpec struct {
	Interpreter string
	Script      string
	Args        []string
	WorkingDir  string
	Env         []string
}

// CommandLine renders the launch command for logs and errors.
func (s LaunchSpec) CommandLine() string {
	line := s.Interpreter
	if s.Script != "" {
		line += " " + s.Script
	}
	for _, arg := range s.Args {
		line += " " + arg
	}
	return line
}

// Process is a running backend owned by the supervisor.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait blocks until the process exits and both output streams are closed.
	Wait() error
	Kill() error
	Pid() int
}

// Launcher starts backend processes.
type Launcher interface {
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

// ExecLauncher starts processes with os/exec.
type ExecLauncher struct {
	// WaitDelay bounds how long Wait keeps draining output after the process
	// exits, in case a grandchild inherited the pipes.
	WaitDelay time.Duration
}

// NewExecLauncher returns a launcher with a two second output drain bound.
func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{WaitDelay: 2 * time.Second}
}

// Launch starts the command. The process is not tied to ctx: it outlives the
// request that triggered the start and is stopped through Kill.
func (l *ExecLauncher) Launch(ctx context.Context, spec LaunchSpec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if spec.Interpreter == "" {
		return nil, fmt.Errorf("backend interpreter is empty")
	}

	args := make([]string, 0, len(spec.Args)+1)
	if spec.Script != "" {
		args = append(args, spec.Script)
	}
	args = append(args, spec.Args...)

	cmd := exec.Command(spec.Interpreter, args...)
	cmd.Dir = spec.WorkingDir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.WaitDelay = l.WaitDelay

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		_ = outW.Close()
		_ = errW.Close()
		return nil, fmt.Errorf("start %s: %w", spec.CommandLine(), err)
	}
	return &execProcess{cmd: cmd, stdout: outR, stderr: errR, outW: outW, errW: errW}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout *io.PipeReader
	stderr *io.PipeReader
	outW   *io.PipeWriter
	errW   *io.PipeWriter
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }
func (p *execProcess) Pid() int          { return p.cmd.Process.Pid }

func (p *execProcess) Wait() error {
	err := p.cmd.Wait()
	_ = p.outW.Close()
	_ = p.errW.Close()
	return err
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
