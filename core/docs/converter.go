// Package docs converts rendered policy Markdown into Word documents with
// pandoc.
package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ccf-policy/core/utils"
)

var (
	ErrNotMarkdown   = errors.New("source must be a .md file")
	ErrSourceMissing = errors.New("source file not found")
)

var pandocArgs = []string{"--standalone", "--from", "markdown-raw_html", "--wrap=none"}

// Runner executes the converter binary.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) error
	LookPath(bin string) (string, error)
}

type CommandRunner struct{}

func (CommandRunner) Run(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 512 {
			msg = msg[:512]
		}
		if msg == "" {
			msg = "pandoc execution failed"
		}
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

func (CommandRunner) LookPath(bin string) (string, error) {
	return exec.LookPath(bin)
}

type Converter struct {
	bin     string
	timeout time.Duration
	runner  Runner
	logger  *utils.Logger
}

func NewConverter(bin string, timeout time.Duration, runner Runner, logger *utils.Logger) *Converter {
	if strings.TrimSpace(bin) == "" {
		bin = "pandoc"
	}
	if runner == nil {
		runner = CommandRunner{}
	}
	return &Converter{bin: bin, timeout: timeout, runner: runner, logger: logger}
}

// Available reports whether the pandoc binary resolves.
func (c *Converter) Available() bool {
	_, err := c.runner.LookPath(c.bin)
	return err == nil
}

// MarkdownToDocx converts src into dst, defaulting dst to src with a .docx
// extension, and returns the written path.
func (c *Converter) MarkdownToDocx(ctx context.Context, src, dst string) (string, error) {
	if !strings.EqualFold(filepath.Ext(src), ".md") {
		return "", fmt.Errorf("%w: %s", ErrNotMarkdown, src)
	}
	if st, err := os.Stat(src); err != nil || st.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrSourceMissing, src)
	}
	if dst == "" {
		dst = strings.TrimSuffix(src, filepath.Ext(src)) + ".docx"
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	args := append([]string{src, "-o", dst}, pandocArgs...)
	started := time.Now()
	if err := c.runner.Run(ctx, c.bin, args...); err != nil {
		c.logger.Errorf("docs: pandoc %s failed: %v", src, err)
		return "", fmt.Errorf("convert %s: %w", filepath.Base(src), err)
	}
	c.logger.Debugf("docs: converted %s in %s", filepath.Base(dst), time.Since(started))
	return dst, nil
}
