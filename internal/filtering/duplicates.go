package filtering

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"go.uber.org/zap"
)

type duplicatesFilter struct {
	disabled bool
	reason   string
}

// NewDuplicates creates a filter that keeps only the first of several files
// with identical content. Unreadable files are kept so that extraction
// reports them.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *duplicatesFilter) IsEnabled() bool { return !f.disabled }

func (f *duplicatesFilter) Validate(*Config) error { return nil }

func (f *duplicatesFilter) Apply(ctx context.Context, deps Deps, s *Sources) (*Sources, Step, error) {
	initial := s.Len()
	seen := make(map[string]string, initial)
	var ctxErr error

	removed := s.Exclude(func(path string) bool {
		if ctxErr != nil {
			return false
		}
		if ctxErr = ctx.Err(); ctxErr != nil {
			return false
		}

		sum, err := fileDigest(path)
		if err != nil {
			if deps.Logger != nil {
				deps.Logger.Debug("cannot hash file, keeping it", zap.String("path", path), zap.Error(err))
			}
			return false
		}
		if first, ok := seen[sum]; ok {
			if deps.Logger != nil {
				deps.Logger.Info("excluding duplicate file",
					zap.String("path", path),
					zap.String("duplicate_of", first),
				)
			}
			return true
		}
		seen[sum] = path
		return false
	})
	if ctxErr != nil {
		return s, Step{}, ctxErr
	}

	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *duplicatesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

func fileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
