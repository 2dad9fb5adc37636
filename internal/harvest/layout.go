package harvest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vietddude/harvester/internal/core/checkpoint"
)

// Output file names inside a partition directory.
const (
	SuccessLogName = "resources_metadata.jsonl"
	FailedLogName  = "failed_downloads.jsonl"
)

// Layout is the output tree of one partition:
//
//	<root>/files/<id><ext>
//	<root>/metadata/<id>.json
//	<root>/resources_metadata.jsonl
//	<root>/failed/<id>.json
//	<root>/failed/failed_downloads.jsonl
//	<root>/_progress.json
type Layout struct {
	Root string
}

// NewLayout returns the layout of mode under baseDir.
func NewLayout(baseDir, mode string) Layout {
	return Layout{Root: filepath.Join(baseDir, mode)}
}

func (l Layout) FilesDir() string       { return filepath.Join(l.Root, "files") }
func (l Layout) MetadataDir() string    { return filepath.Join(l.Root, "metadata") }
func (l Layout) FailedDir() string      { return filepath.Join(l.Root, "failed") }
func (l Layout) SuccessLog() string     { return filepath.Join(l.Root, SuccessLogName) }
func (l Layout) FailedLog() string      { return filepath.Join(l.FailedDir(), FailedLogName) }
func (l Layout) CheckpointFile() string { return filepath.Join(l.Root, checkpoint.FileName) }

// Ensure creates the partition directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.FilesDir(), l.MetadataDir(), l.FailedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return nil
}
