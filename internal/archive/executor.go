package archive

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Executor abstracts command execution for testability. onOutput receives
// every stdout and stderr line as it is produced.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

type commandExecutor struct{}

const (
	outputTailLines = 5
	// maxOutputLine bounds one forwarded line; longer runs are split.
	maxOutputLine = 256 * 1024
	maxTailLine   = 200
)

// splitOutputLines splits on '\n' or '\r' so carriage-return progress
// updates arrive as separate lines, and emits a full buffer as a line rather
// than failing on over-long output.
func splitOutputLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF || len(data) >= maxOutputLine {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		tail    []string
		scanErr error
		once    sync.Once
	)

	// onOutput is serialized across the two streams.
	forward := func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		entry := line
		if len(entry) > maxTailLine {
			entry = entry[:maxTailLine] + "..."
		}
		tail = append(tail, entry)
		if len(tail) > outputTailLines {
			tail = tail[1:]
		}
		if onOutput != nil {
			onOutput(line)
		}
	}

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxOutputLine)
		scanner.Split(splitOutputLines)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
			// Keep the pipe flowing so the child never blocks on a full buffer.
			_, _ = io.Copy(io.Discard, r)
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)

	wg.Wait()
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			return fmt.Errorf("%s: %w: %s", binary, err, strings.Join(tail, " | "))
		}
		return fmt.Errorf("%s: %w", binary, err)
	}
	return nil
}
