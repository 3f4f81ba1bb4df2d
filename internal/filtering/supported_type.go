package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/extract"
)

type supportedTypeFilter struct {
	disabled bool
	reason   string
}

// NewSupportedType creates a filter that removes files extract cannot read.
func NewSupportedType() Filter {
	return &supportedTypeFilter{}
}

func (f *supportedTypeFilter) Name() string { return "supported_type" }

func (f *supportedTypeFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *supportedTypeFilter) IsEnabled() bool { return !f.disabled }

func (f *supportedTypeFilter) Validate(*Config) error { return nil }

func (f *supportedTypeFilter) Apply(_ context.Context, deps Deps, s *Sources) (*Sources, Step, error) {
	initial := s.Len()
	removed := s.Exclude(func(path string) bool { return !extract.IsSupported(path) })
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding files of unsupported type",
			zap.Strings("excluded_files", removed),
			zap.Strings("supported", extract.SupportedExtensions()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *supportedTypeFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"extensions": strings.Join(extract.SupportedExtensions(), ",")},
	}
}
