// Package process starts a test executable with its output merged into a
// single pipe and its standard input kept open for the debugger handshake.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// waitDelay bounds how long Wait blocks on pipes after the process has exited
const waitDelay = 2 * time.Second

// Process is a running child process
type Process struct {
	cmd    *exec.Cmd
	name   string
	stdout *os.File
	stdin  io.WriteCloser

	stdinMu  sync.Mutex
	waitOnce sync.Once
	waitErr  error
}

// Start runs path with args. Standard output and standard error share one pipe.
func Start(path string, args ...string) (*Process, error) {
	cmd := exec.Command(path, args...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		stdin.Close()
		return nil, fmt.Errorf("start %s: %w", filepath.Base(path), err)
	}
	// The child holds its own copy; closing ours lets reads end at exit
	w.Close()

	return &Process{
		cmd:    cmd,
		name:   filepath.Base(path),
		stdout: r,
		stdin:  stdin,
	}, nil
}

// Name returns the base name of the executable
func (p *Process) Name() string {
	return p.name
}

// PID returns the operating system process id
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Stdout returns the merged output stream of the process
func (p *Process) Stdout() io.Reader {
	return p.stdout
}

// WriteStdin writes b to the standard input of the process.
// It may be called from any goroutine.
func (p *Process) WriteStdin(b []byte) error {
	p.stdinMu.Lock()
	defer p.stdinMu.Unlock()
	_, err := p.stdin.Write(b)
	return err
}

// Kill forcibly terminates the process together with the processes it started.
// Killing an exited process is not an error.
func (p *Process) Kill() error {
	err := killProcessGroup(p.cmd)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Wait waits for the process to exit and releases its pipes.
// Subsequent calls return the same result.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
		p.stdinMu.Lock()
		p.stdin.Close()
		p.stdinMu.Unlock()
		p.stdout.Close()
	})
	return p.waitErr
}

// ExitCode returns the exit code after Wait, or -1 if unknown
func (p *Process) ExitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}
