package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhishekg1-gl/langgraph/pkg/ai"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

type stubClient struct {
	raw   string
	err   error
	delay time.Duration
	calls int
}

func (s *stubClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", s.err
}

func (s *stubClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if s.err != nil {
		return s.err
	}
	return ai.UnmarshalFlexible(s.raw, out)
}

func (s *stubClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	return []float32{0.1}, nil
}

func (s *stubClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{0.1}
	}
	return out, nil
}

func testPassage() common.Passage {
	return common.Passage{
		ID:    "p1",
		DocID: "d1",
		Text:  "Sam Altman is the CEO of OpenAI.",
	}
}

func TestExtractValidatesOutput(t *testing.T) {
	client := &stubClient{raw: `{
		"entities": [
			{"name": "Sam Altman", "type": "PERSON"},
			{"name": "OpenAI", "type": "COMPANY"},
			{"name": "", "type": "PERSON"},
			{"name": "Ghost", "type": "SPIRIT"}
		],
		"relationships": [
			{"from": "Sam Altman", "from_type": "PERSON", "type": "CEO_OF", "to": "OpenAI", "to_type": "COMPANY"},
			{"from": "Sam Altman", "from_type": "PERSON", "type": "", "to": "OpenAI", "to_type": "COMPANY"},
			{"from": "", "from_type": "PERSON", "type": "KNOWS", "to": "OpenAI", "to_type": "COMPANY"}
		]
	}`}

	e := NewExtractor(NewExtractorParams{Client: client})
	got, err := e.Extract(context.Background(), testPassage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Entities) != 2 {
		t.Fatalf("expected 2 entities after validation, got %d", len(got.Entities))
	}
	if got.Entities[0].Name != "Sam Altman" || got.Entities[0].Type != common.TypePerson {
		t.Errorf("unexpected first entity: %+v", got.Entities[0])
	}
	if len(got.Relationships) != 1 {
		t.Fatalf("expected 1 relationship after validation, got %d", len(got.Relationships))
	}
	rel := got.Relationships[0]
	if rel.From != "Sam Altman" || rel.Type != "CEO_OF" || rel.To != "OpenAI" {
		t.Errorf("unexpected relationship: %+v", rel)
	}

	for _, ent := range got.Entities {
		if len(ent.Provenance) != 1 || ent.Provenance[0].PassageID != "p1" {
			t.Errorf("entity %s missing provenance", ent.Name)
		}
	}
	if len(rel.Provenance) != 1 || rel.Provenance[0].DocID != "d1" {
		t.Error("relationship missing provenance")
	}
}

func TestExtractLowercaseTypesCanonicalized(t *testing.T) {
	client := &stubClient{raw: `{
		"entities": [{"name": "Berlin", "type": "location"}],
		"relationships": []
	}`}

	e := NewExtractor(NewExtractorParams{Client: client})
	got, err := e.Extract(context.Background(), testPassage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Entities) != 1 || got.Entities[0].Type != common.TypeLocation {
		t.Fatalf("expected canonicalized LOCATION entity, got %+v", got.Entities)
	}
}

func TestExtractMalformedOutputDegrades(t *testing.T) {
	client := &stubClient{raw: `this is not json at all <<<>>> ][`}

	e := NewExtractor(NewExtractorParams{Client: client})
	got, err := e.Extract(context.Background(), testPassage())
	if err != nil {
		t.Fatalf("malformed output must not error, got: %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected empty extraction, got %+v", got)
	}
	if got.Diagnostic == "" {
		t.Error("expected diagnostic message on malformed output")
	}
	if got.Entities == nil || got.Relationships == nil {
		t.Error("empty extraction must keep non-nil slices")
	}
}

func TestExtractTimeoutDegrades(t *testing.T) {
	client := &stubClient{raw: `{"entities": [], "relationships": []}`, delay: 200 * time.Millisecond}

	e := NewExtractor(NewExtractorParams{
		Client:  client,
		Timeout: 20 * time.Millisecond,
	})
	got, err := e.Extract(context.Background(), testPassage())
	if err != nil {
		t.Fatalf("timeout must not error, got: %v", err)
	}
	if !got.Empty() {
		t.Errorf("expected empty extraction on timeout, got %+v", got)
	}
	if got.Diagnostic != "extraction timed out" {
		t.Errorf("expected timeout diagnostic, got %q", got.Diagnostic)
	}
}

func TestExtractConnectivityErrorSurfaces(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}

	e := NewExtractor(NewExtractorParams{Client: client})
	_, err := e.Extract(context.Background(), testPassage())
	if err == nil {
		t.Fatal("expected connectivity error to surface")
	}
}

func TestExtractBatchContinuesPastFailures(t *testing.T) {
	client := &stubClient{raw: `not json`}

	e := NewExtractor(NewExtractorParams{Client: client})
	passages := []common.Passage{
		{ID: "p1", DocID: "d1", Text: "one"},
		{ID: "p2", DocID: "d1", Text: "two"},
		{ID: "p3", DocID: "d1", Text: "three"},
	}

	results, summary, err := e.ExtractBatch(context.Background(), passages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Passages != 3 {
		t.Errorf("expected 3 passages in summary, got %d", summary.Passages)
	}
	if summary.Errors != 3 {
		t.Errorf("expected 3 errors counted, got %d", summary.Errors)
	}
	if len(results) != 3 {
		t.Errorf("degraded passages still produce results, got %d", len(results))
	}
	if client.calls != 3 {
		t.Errorf("expected 3 extraction calls, got %d", client.calls)
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CEO_OF", "CEO_OF"},
		{"ceo of", "CEO_OF"},
		{"partnered-with", "PARTNERED_WITH"},
		{"__weird__", "WEIRD"},
		{"; DROP TABLE", "DROP_TABLE"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeLabel(tt.in); got != tt.want {
			t.Errorf("normalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
