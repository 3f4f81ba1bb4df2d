package apperr

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestExtractionErrorWrapsCause(t *testing.T) {
	err := fmt.Errorf("building candidate: %w", Extraction("cv.pdf", "file not found", os.ErrNotExist))

	if !IsExtraction(err) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	if IsConfiguration(err) {
		t.Fatalf("did not expect configuration error")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected cause to be preserved")
	}
	if !strings.Contains(err.Error(), `"cv.pdf"`) {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "extraction", err: Extraction("a.docx", "empty text", nil), want: "extraction"},
		{name: "configuration", err: Configuration("Resume", "missing column"), want: "configuration"},
		{name: "other", err: errors.New("boom"), want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Kind(tt.err); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
