package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"
)

type embedCall struct {
	model  string
	text   string
	config *genai.EmbedContentConfig
}

type fakeResponse struct {
	resp *genai.EmbedContentResponse
	err  error
}

type fakeModels struct {
	mu    sync.Mutex
	calls []embedCall
	queue []fakeResponse
}

func (f *fakeModels) enqueue(resp *genai.EmbedContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text := ""
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		text = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, embedCall{model: model, text: text, config: config})
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func embedding(values ...float32) *genai.EmbedContentResponse {
	return &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: values}}}
}

func noWait(t *testing.T) {
	t.Helper()
	original := wait
	wait = func(context.Context, time.Duration) error { return nil }
	t.Cleanup(func() { wait = original })
}

func TestEmbedderReturnsFirstEmbedding(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(embedding(0.1, 0.2, 0.3), nil)

	e := newEmbedder(models, WithModel("custom-model"), WithDimensions(3))

	got, err := e.Embed(context.Background(), "  golang developer  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 || got[0] != 0.1 {
		t.Fatalf("unexpected embedding: %v", got)
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(models.calls))
	}
	call := models.calls[0]
	if call.model != "custom-model" {
		t.Fatalf("unexpected model: %q", call.model)
	}
	if call.text != "golang developer" {
		t.Fatalf("unexpected text: %q", call.text)
	}
	if call.config == nil || call.config.OutputDimensionality == nil || *call.config.OutputDimensionality != 3 {
		t.Fatalf("expected output dimensionality 3, got %+v", call.config)
	}
	if call.config.TaskType != taskSemanticSimilarity {
		t.Fatalf("unexpected task type: %q", call.config.TaskType)
	}
}

func TestEmbedderDefaults(t *testing.T) {
	e := newEmbedder(&fakeModels{})
	if e.Model() != DefaultModel {
		t.Fatalf("expected default model, got %q", e.Model())
	}
	if e.maxRetries != defaultMaxRetries {
		t.Fatalf("expected %d retries, got %d", defaultMaxRetries, e.maxRetries)
	}
}

func TestEmbedderRetriesOnTemporaryError(t *testing.T) {
	noWait(t)

	core, logs := observer.New(zapcore.WarnLevel)
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(embedding(1, 0), nil)

	e := newEmbedder(models, WithMaxRetries(2), WithLogger(zap.New(core)))

	got, err := e.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected embedding: %v", got)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}

	entries := logs.FilterMessage("temporary embedding failure, retrying").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 retry log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["embedding_provider"]; got != "gemini" {
		t.Fatalf("expected provider field, got %v", got)
	}
}

func TestEmbedderStopsAfterRetriesExhausted(t *testing.T) {
	noWait(t)

	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)

	e := newEmbedder(models, WithMaxRetries(2))

	_, err := e.Embed(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestEmbedderDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	e := newEmbedder(models, WithMaxRetries(3))

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestEmbedderDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	e := newEmbedder(models, WithMaxRetries(3))

	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error when quota delay too long")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestEmbedderRejectsEmptyInputAndOutput(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(&genai.EmbedContentResponse{}, nil)

	e := newEmbedder(models)

	if _, err := e.Embed(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty text")
	}
	if len(models.calls) != 0 {
		t.Fatalf("expected no calls for empty text, got %d", len(models.calls))
	}
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantRetry bool
		wantDelay time.Duration
	}{
		{name: "server error", err: genai.APIError{Code: 500}, wantRetry: true, wantDelay: baseRetryDelay},
		{name: "short quota", err: genai.APIError{Code: 429, Message: "Please retry in 2.5s."}, wantRetry: true, wantDelay: 2500 * time.Millisecond},
		{name: "quota without hint", err: genai.APIError{Code: 429}, wantRetry: true, wantDelay: baseRetryDelay},
		{name: "not found", err: genai.APIError{Code: 404}, wantRetry: false},
		{name: "plain error", err: errors.New("boom"), wantRetry: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay, retry := retryDelay(tt.err, 1)
			if retry != tt.wantRetry {
				t.Fatalf("expected retry=%v, got %v", tt.wantRetry, retry)
			}
			if retry && delay != tt.wantDelay {
				t.Fatalf("expected delay %v, got %v", tt.wantDelay, delay)
			}
		})
	}
}

func TestNewEmbedderRequiresKey(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
