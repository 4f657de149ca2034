package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/amishk599/jobdigest/internal/model"
)

var _ model.MailClient = (*GogClient)(nil)

// Runner executes a command and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs the command as a subprocess.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// GogClient talks to Gmail through the gog CLI, one subprocess per call.
type GogClient struct {
	binary  string
	timeout time.Duration
	run     Runner
}

// NewGogClient returns a client invoking binary. A zero timeout leaves calls unbounded.
func NewGogClient(binary string, timeout time.Duration, run Runner) *GogClient {
	if run == nil {
		run = ExecRunner
	}
	return &GogClient{binary: binary, timeout: timeout, run: run}
}

type searchResponse struct {
	Threads []struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
	} `json:"threads"`
}

type getResponse struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Search returns the threads matching query, at most max of them.
func (c *GogClient) Search(ctx context.Context, query string, max int) ([]model.Thread, error) {
	var resp searchResponse
	if err := c.runJSON(ctx, &resp, "gmail", "search", query, "--max", strconv.Itoa(max), "--json"); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	threads := make([]model.Thread, 0, len(resp.Threads))
	for _, t := range resp.Threads {
		threads = append(threads, model.Thread{ID: t.ID, Subject: t.Subject})
	}
	return threads, nil
}

// Get fetches a single message.
func (c *GogClient) Get(ctx context.Context, id string) (model.Message, error) {
	var resp getResponse
	if err := c.runJSON(ctx, &resp, "gmail", "get", id, "--json"); err != nil {
		return model.Message{}, fmt.Errorf("get %s: %w", id, err)
	}
	return model.Message{ID: id, Body: resp.Body}, nil
}

// ModifyLabels adds and removes labels on a thread.
func (c *GogClient) ModifyLabels(ctx context.Context, id string, add, remove []string) error {
	args := []string{"gmail", "thread", "modify", id}
	for _, l := range add {
		args = append(args, "--add", l)
	}
	for _, l := range remove {
		args = append(args, "--remove", l)
	}
	args = append(args, "--json")

	var discard map[string]any
	if err := c.runJSON(ctx, &discard, args...); err != nil {
		return fmt.Errorf("modify %s: %w", id, err)
	}
	return nil
}

// Send delivers an HTML email.
func (c *GogClient) Send(ctx context.Context, to, subject, html string) error {
	if _, err := c.exec(ctx, "gmail", "send", "--to", to, "--subject", subject, "--body-html", html); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}
	return nil
}

func (c *GogClient) runJSON(ctx context.Context, v any, args ...string) error {
	out, err := c.exec(ctx, args...)
	if err != nil {
		return err
	}
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		out = []byte("{}")
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("decode output %q: %w", truncate(out, 100), err)
	}
	return nil
}

func (c *GogClient) exec(ctx context.Context, args ...string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	stdout, stderr, err := c.run(ctx, c.binary, args...)
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return nil, &model.CommandError{
			Args:     append([]string{c.binary}, args[:min(len(args), 3)]...),
			ExitCode: code,
			Stderr:   string(stderr),
			Err:      err,
		}
	}
	return stdout, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
