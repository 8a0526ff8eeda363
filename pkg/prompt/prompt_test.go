package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

func chunk(id, title string, page int, text string) common.EvidenceChunk {
	return common.EvidenceChunk{
		Passage: common.Passage{ID: id, DocID: "doc-" + id, SourceTitle: title, Page: page, Text: text},
		Origin:  common.OriginSemantic,
	}
}

func TestBuildAnnotatesSources(t *testing.T) {
	a := NewAssembler(NewAssemblerParams{})
	out := a.Build("Who leads OpenAI?", []common.EvidenceChunk{
		chunk("p1", "Annual Report", 12, "Sam Altman is the CEO."),
	}, nil)

	if !strings.Contains(out, "[Source: Annual Report, Page 12]") {
		t.Errorf("missing source annotation in prompt:\n%s", out)
	}
	if !strings.Contains(out, "Sam Altman is the CEO.") {
		t.Error("passage text missing from prompt")
	}
	if !strings.Contains(out, "Question: Who leads OpenAI?") {
		t.Error("query missing from prompt")
	}
}

func TestBuildOmitsPageWhenUnknown(t *testing.T) {
	a := NewAssembler(NewAssemblerParams{})
	out := a.Build("q", []common.EvidenceChunk{chunk("p1", "Notes", 0, "text")}, nil)

	if !strings.Contains(out, "[Source: Notes]") {
		t.Errorf("expected pageless annotation, got:\n%s", out)
	}
	if strings.Contains(out, "Page 0") {
		t.Error("zero page leaked into annotation")
	}
}

func TestBuildFallsBackToDocID(t *testing.T) {
	a := NewAssembler(NewAssemblerParams{})
	out := a.Build("q", []common.EvidenceChunk{chunk("p1", "", 3, "text")}, nil)

	if !strings.Contains(out, "[Source: doc-p1, Page 3]") {
		t.Errorf("expected doc id fallback, got:\n%s", out)
	}
}

func TestBuildCapsEvidenceIndependently(t *testing.T) {
	a := NewAssembler(NewAssemblerParams{EvidenceCap: 2, PathCap: 1})

	evidence := make([]common.EvidenceChunk, 6)
	for i := range evidence {
		evidence[i] = chunk(fmt.Sprintf("p%d", i), fmt.Sprintf("Doc %d", i), i+1, fmt.Sprintf("passage %d", i))
	}
	paths := []common.GraphPath{
		{From: "A", To: "B", Depth: 1},
		{From: "B", To: "C", Depth: 2},
		{From: "C", To: "D", Depth: 3},
	}

	out := a.Build("q", evidence, paths)

	for i := 0; i < 2; i++ {
		if !strings.Contains(out, fmt.Sprintf("passage %d", i)) {
			t.Errorf("expected passage %d within cap", i)
		}
	}
	for i := 2; i < 6; i++ {
		if strings.Contains(out, fmt.Sprintf("passage %d", i)) {
			t.Errorf("passage %d exceeds cap but was included", i)
		}
	}

	if !strings.Contains(out, "A -> B") {
		t.Error("expected first path within cap")
	}
	if strings.Contains(out, "B -> C") || strings.Contains(out, "C -> D") {
		t.Error("path cap not enforced")
	}
}

func TestBuildNoPathsOmitsSection(t *testing.T) {
	a := NewAssembler(NewAssemblerParams{})
	out := a.Build("q", []common.EvidenceChunk{chunk("p1", "Doc", 1, "text")}, nil)

	if strings.Contains(out, "Knowledge graph relationships") {
		t.Error("path section rendered with no paths")
	}
}
