package download

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// has been killed.
const waitDelay = 5 * time.Second

// Process is a started download.
type Process interface {
	Wait() error
	Pid() int
}

// Runner starts external processes. onOutput receives each stdout and stderr
// line; it may be nil.
type Runner interface {
	Start(ctx context.Context, binary string, args []string, onOutput func(string)) (Process, error)
}

type execRunner struct{}

func (execRunner) Start(ctx context.Context, binary string, args []string, onOutput func(string)) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	proc := &execProcess{cmd: cmd}
	var mu sync.Mutex
	forward := func(line string) {
		if onOutput == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		onOutput(line)
	}
	proc.wg.Add(2)
	go proc.scan(stdout, forward)
	go proc.scan(stderr, forward)
	return proc, nil
}

type execProcess struct {
	cmd *exec.Cmd
	wg  sync.WaitGroup

	once    sync.Once
	scanErr error
}

func (p *execProcess) scan(r io.Reader, forward func(string)) {
	defer p.wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLinesOrCarriageReturns)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			forward(line)
		}
	}
	if err := scanner.Err(); err != nil {
		p.once.Do(func() { p.scanErr = err })
		_, _ = io.Copy(io.Discard, r)
	}
}

func (p *execProcess) Wait() error {
	p.wg.Wait()
	if err := p.cmd.Wait(); err != nil {
		return err
	}
	if p.scanErr != nil {
		return fmt.Errorf("scan output: %w", p.scanErr)
	}
	return nil
}

func (p *execProcess) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// scanLinesOrCarriageReturns splits on \n and on the bare \r the downloader
// uses to redraw its progress line.
func scanLinesOrCarriageReturns(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
