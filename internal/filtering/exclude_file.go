package filtering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExcludedSource is one entry of an exclude file.
type ExcludedSource struct {
	File       string    `json:"file"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at,omitzero"`
}

// ExcludedSources is the content of an exclude file: a JSON array of entries.
type ExcludedSources struct {
	Items []*ExcludedSource
}

func (e *ExcludedSources) MarshalJSON() ([]byte, error) {
	if e.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Items)
}

func (e *ExcludedSources) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &e.Items)
}

// Matches reports whether path is listed. An entry matches the same file
// after cleaning, or when one of the two is a trailing part of the other:
// "bob.pdf" and "resumes/bob.pdf" both match "/data/resumes/bob.pdf".
// Two absolute paths only match when they are equal.
func (e *ExcludedSources) Matches(path string) bool {
	p := filepath.ToSlash(filepath.Clean(path))
	for _, item := range e.Items {
		file := strings.TrimSpace(item.File)
		if file == "" {
			continue
		}
		f := filepath.ToSlash(filepath.Clean(file))
		if f == p || hasPathSuffix(p, f) || hasPathSuffix(f, p) {
			return true
		}
	}
	return false
}

// hasPathSuffix reports whether the relative path suffix ends path on a
// directory boundary.
func hasPathSuffix(path, suffix string) bool {
	if strings.HasPrefix(suffix, "/") || strings.HasPrefix(suffix, "../") || suffix == ".." {
		return false
	}
	return strings.HasSuffix(path, "/"+suffix)
}

// LoadExcludedSources reads an exclude file. A missing or empty file yields an
// empty list.
func LoadExcludedSources(path string) (*ExcludedSources, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedSources{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedSources{}, nil
	}

	var excluded ExcludedSources
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}
	return &excluded, nil
}

// AppendExcludedSource adds an entry to the exclude file at path, creating it
// when needed.
func AppendExcludedSource(path, source, reason string) error {
	excluded, err := LoadExcludedSources(path)
	if err != nil {
		return err
	}
	if excluded.Matches(source) {
		return nil
	}

	excluded.Items = append(excluded.Items, &ExcludedSource{
		File:       source,
		Reason:     reason,
		ExcludedAt: time.Now().UTC(),
	})

	data, err := json.MarshalIndent(excluded, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

type excludeFileFilter struct {
	disabled bool
	reason   string
}

// NewExcludeFile creates a filter that removes sources listed in the exclude
// file named by Config.ExcludeFile.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludeFileFilter) IsEnabled() bool { return !f.disabled }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	path := strings.TrimSpace(cfg.ExcludeFile)
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("exclude file %q is a directory", path)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, s *Sources) (*Sources, Step, error) {
	initial := s.Len()

	path := ""
	if deps.Config != nil {
		path = strings.TrimSpace(deps.Config.ExcludeFile)
	}
	if path == "" {
		return s, Step{Initial: initial, Dropped: 0, Left: s.Len()}, nil
	}

	excluded, err := LoadExcludedSources(path)
	if err != nil {
		return s, Step{}, fmt.Errorf("getting excluded sources from file: %w", err)
	}

	removed := s.Exclude(excluded.Matches)
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding sources based on exclude file",
			zap.String("path", path),
			zap.Strings("excluded_files", removed),
			zap.Int("files_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
