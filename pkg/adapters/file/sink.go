// Package file provides an event sink backed by a single JSON file on the
// local filesystem, written atomically.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/espalier/pkg/domain"
)

// Sink implements ports.EventSink on the local filesystem.
type Sink struct {
	Path string
}

// New creates a Sink writing to path. If path is empty, it defaults to
// ".espalier/events.json".
func New(path string) *Sink {
	if path == "" {
		path = filepath.Join(".espalier", "events.json")
	}
	return &Sink{Path: path}
}

// LoadLog reads the persisted log. A missing file is an empty log, not an
// error.
func (s *Sink) LoadLog(ctx context.Context) ([]domain.Event, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var log []domain.Event
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse event log: %w", err)
	}
	return log, nil
}

// SaveLog persists the log atomically: write to a temp file in the same
// directory, fsync, then rename over the destination.
func (s *Sink) SaveLog(ctx context.Context, log []domain.Event) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure log directory: %w", err)
	}

	if log == nil {
		log = []domain.Event{}
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal event log: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "tmp-events-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace event log: %w", err)
	}
	return nil
}
