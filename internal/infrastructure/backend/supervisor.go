package backend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

const startKey = "start"

// TransitionFunc observes supervisor state changes. It runs with the
// supervisor lock held and must not call back into the supervisor.
type TransitionFunc func(from, to domain.BackendState)

// Supervisor owns the backend process: stopped -> starting -> ready, and back
// to stopped on exit, crash, start failure or shutdown.
type Supervisor struct {
	spec           LaunchSpec
	marker         string
	readyOnStderr  bool
	startupTimeout time.Duration
	launcher       Launcher
	log            ports.Logger
	onTransition   TransitionFunc

	group singleflight.Group

	mu      sync.Mutex
	state   domain.BackendState
	proc    Process
	exited  chan struct{}
	session uint64
}

// SupervisorOption customises a Supervisor.
type SupervisorOption func(*Supervisor)

// WithLauncher replaces the os/exec launcher.
func WithLauncher(l Launcher) SupervisorOption {
	return func(s *Supervisor) { s.launcher = l }
}

// WithTransitionHook registers fn for every state change.
func WithTransitionHook(fn TransitionFunc) SupervisorOption {
	return func(s *Supervisor) { s.onTransition = fn }
}

// NewSupervisor builds a supervisor from backend settings.
func NewSupervisor(cfg domain.BackendSettings, log ports.Logger, opts ...SupervisorOption) *Supervisor {
	marker := cfg.ReadyMarker
	if marker == "" {
		marker = domain.DefaultBackendReadyMarker
	}
	s := &Supervisor{
		spec: LaunchSpec{
			Interpreter: cfg.Interpreter,
			Script:      cfg.Script,
			Args:        cfg.Args,
			WorkingDir:  cfg.WorkingDir,
		},
		marker:         marker,
		readyOnStderr:  cfg.ReadyOnStderr,
		startupTimeout: cfg.StartupTimeoutDuration(),
		launcher:       NewExecLauncher(),
		log:            log,
		state:          domain.BackendStopped,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Supervisor) State() domain.BackendState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// EnsureReady returns once the backend is ready, spawning it if needed.
// Concurrent callers share one start attempt. Cancelling ctx abandons the
// wait but not the attempt itself.
func (s *Supervisor) EnsureReady(ctx context.Context) error {
	if s.State() == domain.BackendReady {
		return nil
	}

	ch := s.group.DoChan(startKey, func() (interface{}, error) {
		return nil, s.start()
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) start() error {
	s.mu.Lock()
	if s.state == domain.BackendReady {
		s.mu.Unlock()
		return nil
	}
	s.session++
	id := s.session
	s.setStateLocked(domain.BackendStarting)
	s.mu.Unlock()

	s.log.Info("starting backend", map[string]interface{}{
		"command": s.spec.CommandLine(),
		"marker":  s.marker,
	})

	proc, err := s.launcher.Launch(context.Background(), s.spec)
	if err != nil {
		s.stopSession(id)
		return s.startError(err)
	}

	done := make(chan struct{})
	s.mu.Lock()
	if s.session != id {
		s.mu.Unlock()
		_ = proc.Kill()
		go func() { _ = proc.Wait() }()
		return s.startError(errors.New("shut down during startup"))
	}
	s.proc = proc
	s.exited = done
	s.mu.Unlock()

	ready := make(chan struct{})
	exitErr := make(chan error, 1)
	var readyOnce sync.Once
	markReady := func() { readyOnce.Do(func() { close(ready) }) }
	go s.watchStdout(proc.Stdout(), markReady)
	if s.readyOnStderr {
		go s.drainStderr(proc.Stderr(), markReady)
	} else {
		go s.drainStderr(proc.Stderr(), nil)
	}
	go s.monitor(id, proc, done, exitErr)

	timer := time.NewTimer(s.startupTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session != id || s.state != domain.BackendStarting {
			return s.startError(errors.New("backend stopped before becoming ready"))
		}
		s.setStateLocked(domain.BackendReady)
		s.log.Info("backend ready", map[string]interface{}{"pid": proc.Pid()})
		return nil
	case err := <-exitErr:
		s.stopSession(id)
		return s.startError(fmt.Errorf("exited before ready: %s", describeExit(err)))
	case <-timer.C:
		_ = proc.Kill()
		s.stopSession(id)
		return s.startError(fmt.Errorf("no readiness marker within %s", s.startupTimeout))
	}
}

// Shutdown kills the owned process, if any, and waits for it to exit until ctx
// is done. The state is stopped afterwards regardless of the kill outcome.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	proc, done := s.proc, s.exited
	s.session++
	s.proc = nil
	s.exited = nil
	s.setStateLocked(domain.BackendStopped)
	s.mu.Unlock()

	if proc == nil {
		return nil
	}
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.log.Warn("backend kill failed", map[string]interface{}{"error": err.Error()})
	}
	select {
	case <-done:
		s.log.Info("backend stopped", nil)
	case <-ctx.Done():
		s.log.Warn("backend did not exit before shutdown deadline", map[string]interface{}{"error": ctx.Err().Error()})
	}
	return nil
}

func (s *Supervisor) monitor(id uint64, proc Process, done chan struct{}, exitErr chan<- error) {
	err := proc.Wait()
	exitErr <- err
	close(done)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != id {
		return
	}
	if s.state == domain.BackendReady {
		s.log.Warn("backend exited", map[string]interface{}{"exit": describeExit(err)})
	}
	s.proc = nil
	s.exited = nil
	s.setStateLocked(domain.BackendStopped)
}

func (s *Supervisor) watchStdout(r io.Reader, markReady func()) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		s.log.Debug("backend stdout", map[string]interface{}{"line": line})
		if strings.Contains(line, s.marker) {
			markReady()
		}
	}
	// keep the pipe drained so the process never blocks on a full buffer
	_, _ = io.Copy(io.Discard, r)
}

// drainStderr logs stderr lines. A non-nil markReady also watches for the marker.
func (s *Supervisor) drainStderr(r io.Reader, markReady func()) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if markReady != nil && strings.Contains(line, s.marker) {
			s.log.Debug("backend stderr", map[string]interface{}{"line": line})
			markReady()
			continue
		}
		s.log.Warn("backend stderr", map[string]interface{}{"line": line})
	}
	_, _ = io.Copy(io.Discard, r)
}

func (s *Supervisor) stopSession(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != id {
		return
	}
	s.setStateLocked(domain.BackendStopped)
}

func (s *Supervisor) setStateLocked(next domain.BackendState) {
	prev := s.state
	if prev == next {
		return
	}
	s.state = next
	if s.onTransition != nil {
		s.onTransition(prev, next)
	}
}

func (s *Supervisor) startError(err error) error {
	s.log.Error("backend start failed", err, map[string]interface{}{"command": s.spec.CommandLine()})
	return &domain.BackendStartError{Command: s.spec.CommandLine(), Err: err}
}

func describeExit(err error) string {
	if err == nil {
		return "exit status 0"
	}
	return err.Error()
}

var _ ports.BackendSupervisor = (*Supervisor)(nil)
