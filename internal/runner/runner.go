// Package runner invokes the external agent-runner executable, the primary
// generation tier. The runner keeps per-session conversation state of its own,
// keyed by the session ID we pass it.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// gracePeriod is added on top of the runner's own requested timeout before
// the subprocess is forcibly killed. The runner is told to stop first; the
// hard deadline only exists for runners that ignore their own flag.
const gracePeriod = 10 * time.Second

// Client runs the agent-runner executable once per call.
type Client struct {
	command string
	timeout time.Duration
	grace   time.Duration
}

// NewClient creates a Client for the given executable. timeout is the limit
// passed to the runner itself; the subprocess is killed gracePeriod later.
func NewClient(command string, timeout time.Duration) *Client {
	return &Client{
		command: command,
		timeout: timeout,
		grace:   gracePeriod,
	}
}

// Run executes the runner with the assembled message and returns its cleaned
// stdout. Output is read only after the process exits or is killed; partial
// streaming output is never consumed. Any failure mode (launch error,
// non-zero exit, kill on deadline) is an error; the caller decides whether
// to fall back.
func (c *Client) Run(ctx context.Context, sessionID, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout+c.grace)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command,
		"--session", sessionID,
		"--timeout", strconv.Itoa(int(c.timeout.Seconds())),
		message,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Stop waiting on the output pipes shortly after a kill, in case the
	// runner leaked a child process that still holds them open.
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctx.Err() != nil {
		return "", fmt.Errorf("runner killed after %s: %w", c.timeout+c.grace, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("runner exited with status %d: %s", exitErr.ExitCode(), firstLine(stderr.String()))
		}
		return "", fmt.Errorf("failed to launch runner: %w", err)
	}

	return CleanOutput(stdout.String()), nil
}

// CleanOutput strips the runner's banner and usage chrome, keeping only the
// answer text.
func CleanOutput(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isBannerLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// bannerPrefixes are line starts the runner prints around the answer: box
// drawing, spinners, and run metadata.
var bannerPrefixes = []string{
	"╭", "╰", "│", "┌", "└", "✻", "⏺",
}

var bannerMarkers = []string{
	"tokens used:",
	"total cost:",
	"session id:",
	"model:",
}

func isBannerLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, p := range bannerPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	lower := strings.ToLower(trimmed)
	for _, m := range bannerMarkers {
		if strings.HasPrefix(lower, m) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
