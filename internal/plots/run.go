package plots

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/acisops/acispy/internal/fsutil"
	"github.com/acisops/acispy/internal/security"
	"github.com/acisops/acispy/internal/timeutil"
)

// Run is one batch of figures written under a fresh directory named
// <root>/<YYYYMMDD_HHMMSS>-<id prefix>.
type Run struct {
	ID  string
	Dir string

	fs    fsutil.FileSystem
	mu    sync.Mutex
	files []string
}

// NewRun creates the output directory for a batch.
func NewRun(fsys fsutil.FileSystem, root string, clock timeutil.Clock) (*Run, error) {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	id := uuid.New().String()
	dir := filepath.Join(root, clock.Now().UTC().Format("20060102_150405")+"-"+id[:8])
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("plots: run dir: %w", err)
	}
	return &Run{ID: id, Dir: dir, fs: fsys}, nil
}

// Create opens name inside the run directory and records it. Names that
// resolve outside the directory are rejected.
func (r *Run) Create(name string) (io.WriteCloser, error) {
	path := filepath.Join(r.Dir, name)
	if err := security.ValidatePathWithinDirectory(path, r.Dir); err != nil {
		return nil, fmt.Errorf("plots: %w", err)
	}
	w, err := r.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("plots: %w", err)
	}
	r.mu.Lock()
	r.files = append(r.files, name)
	r.mu.Unlock()
	return w, nil
}

// SaveFigure writes fig as name; the extension selects the format.
func (r *Run) SaveFigure(name string, fig *Figure) error {
	format, err := FormatFromPath(name)
	if err != nil {
		return err
	}
	w, err := r.Create(name)
	if err != nil {
		return err
	}
	if err := fig.Render(w, format); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// FigureName builds a file name for the given field specs and format.
func FigureName(format string, specs ...string) string {
	return security.SanitizeFilename(strings.Join(specs, "-")) + "." + format
}

// Files returns the names written so far.
func (r *Run) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.files))
	copy(out, r.files)
	return out
}

type manifest struct {
	RunID string   `json:"run_id"`
	Files []string `json:"files"`
}

// WriteManifest records the run id and files in manifest.json.
func (r *Run) WriteManifest() error {
	data, err := json.MarshalIndent(manifest{RunID: r.ID, Files: r.Files()}, "", "  ")
	if err != nil {
		return err
	}
	return r.fs.WriteFile(filepath.Join(r.Dir, "manifest.json"), data, 0o644)
}
