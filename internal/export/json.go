// Package export renders ranked results as JSON or as an XLSX workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spigell/resume-matcher/internal/matching"
)

// WriteJSON writes results as an indented JSON array. No results yield [].
func WriteJSON(w io.Writer, results []matching.Result) error {
	if results == nil {
		results = []matching.Result{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}
