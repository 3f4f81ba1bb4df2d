package profile

import "context"

// Features is what an Extractor finds in a piece of raw text.
type Features struct {
	Skills         Set
	Degrees        []Degree
	Certifications Set
	// Embedding is nil when no vector could be produced for the text.
	Embedding []float32
}

// Extractor turns raw text into Features. It is the only place where models
// are called, so it owns truncation and cancellation.
type Extractor interface {
	Extract(ctx context.Context, text string) (Features, error)
}

// skillDetector is implemented by extractors that can find skills in a text
// fragment without computing an embedding.
type skillDetector interface {
	DetectSkills(text string) Set
}
