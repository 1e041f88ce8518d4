package printing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSink writes each job's markup to <dir>/<printer>/<job id>.html, where a
// platform print spooler picks it up.
type DirSink struct {
	dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{dir: dir}
}

func (s *DirSink) Print(_ context.Context, job Job) error {
	if job.ID == "" || strings.ContainsAny(job.ID, `/\`) {
		return fmt.Errorf("invalid print job id %q", job.ID)
	}
	printer := filepath.Base(filepath.Clean("/" + job.Printer))
	if printer == "/" || printer == "." {
		printer = "default"
	}

	target := filepath.Join(s.dir, printer)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create printer dir: %w", err)
	}
	path := filepath.Join(target, job.ID+".html")
	if err := os.WriteFile(path, []byte(job.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write print job: %w", err)
	}
	return nil
}
