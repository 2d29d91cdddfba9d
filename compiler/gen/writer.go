package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Writer renders and writes generated files in parallel.
type Writer struct {
	outDir  string
	workers int

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// NewWriter creates a writer rooted at outDir.
func NewWriter(outDir string) *Writer {
	return &Writer{
		outDir:  outDir,
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithWorkers sets the number of parallel workers.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the generation metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write renders all files and writes them under the output directory.
// It stops at the first failure.
func (w *Writer) Write(ctx context.Context, files []*File) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError(PhaseWrite, w.outDir, "create output directory", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) writeFile(f *File) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError(PhaseRender, f.Path, "", err)
	}
	fullPath := filepath.Join(w.outDir, filepath.FromSlash(f.Path))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return NewGenerationError(PhaseWrite, f.Path, "create directory", err)
	}
	if err := os.WriteFile(fullPath, buf.Bytes(), 0o644); err != nil {
		return NewGenerationError(PhaseWrite, f.Path, "", err)
	}
	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(buf.Len())
	w.mu.Unlock()
	return nil
}
