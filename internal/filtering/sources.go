// Package filtering drops candidate source files before extraction: files of
// an unsupported type, files listed in an exclude file and duplicate content.
package filtering

// Sources is an ordered list of candidate file paths.
type Sources struct {
	Items []string
}

// NewSources wraps paths. The slice is copied.
func NewSources(paths ...string) *Sources {
	return &Sources{Items: append([]string(nil), paths...)}
}

func (s *Sources) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// Exclude removes every path for which drop returns true, preserving the order
// of the remaining ones, and returns the removed paths.
func (s *Sources) Exclude(drop func(path string) bool) []string {
	var removed []string
	kept := s.Items[:0]
	for _, path := range s.Items {
		if drop(path) {
			removed = append(removed, path)
			continue
		}
		kept = append(kept, path)
	}
	s.Items = kept
	return removed
}
