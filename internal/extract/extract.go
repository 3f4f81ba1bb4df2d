// Package extract turns PDF and Word documents into plain text. Any other file
// type is rejected.
package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/spigell/resume-matcher/internal/apperr"
)

var readers = map[string]func(path string) (string, error){
	".pdf":  readPDF,
	".docx": readDocx,
	".doc":  readDocx,
}

// SupportedExtensions returns the accepted file extensions, sorted.
func SupportedExtensions() []string {
	out := make([]string, 0, len(readers))
	for ext := range readers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsSupported reports whether path has an accepted extension.
func IsSupported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Text returns the plain text of the document at path. Missing, unreadable,
// unsupported and empty documents all yield an *apperr.ExtractionError.
func Text(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	read, ok := readers[ext]
	if !ok {
		return "", apperr.Extraction(path, "unsupported file type "+quoteExt(ext), nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperr.Extraction(path, "file not found", nil)
		}
		return "", apperr.Extraction(path, "unreadable file", err)
	}
	if info.IsDir() {
		return "", apperr.Extraction(path, "is a directory", nil)
	}

	text, err := read(path)
	if err != nil {
		return "", apperr.Extraction(path, "unreadable "+strings.TrimPrefix(ext, ".")+" document", err)
	}

	text = cleanText(text)
	if text == "" {
		return "", apperr.Extraction(path, "no text extracted", nil)
	}
	return text, nil
}

func quoteExt(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return ext
}

func readPDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("malformed pdf")
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func readDocx(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return documentText(r.Editable().GetContent())
}

// documentText collects the character data of a WordprocessingML body, one
// line per paragraph.
func documentText(content string) (string, error) {
	dec := xml.NewDecoder(bytes.NewBufferString(content))
	dec.Strict = false

	var b strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

// cleanText trims every line and drops blank ones.
func cleanText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
