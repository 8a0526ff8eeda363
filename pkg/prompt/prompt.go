// Package prompt renders the generation prompt from retrieved evidence.
//
// The assembler enforces its own caps on how many relationship paths and
// evidence passages make it into the prompt, independent of how much the
// retriever gathered. Generation latency grows with prompt size, so the
// evidence cap is deliberately much smaller than a typical retrieval set.
package prompt

import (
	"fmt"
	"strings"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

const (
	defaultEvidenceCap = 5
	defaultPathCap     = 10
)

// Assembler builds bounded generation prompts.
type Assembler struct {
	evidenceCap int
	pathCap     int
}

// NewAssemblerParams configures a new Assembler. Caps at or below zero fall
// back to the defaults.
type NewAssemblerParams struct {
	EvidenceCap int
	PathCap     int
}

func NewAssembler(params NewAssemblerParams) *Assembler {
	evidenceCap := params.EvidenceCap
	if evidenceCap <= 0 {
		evidenceCap = defaultEvidenceCap
	}
	pathCap := params.PathCap
	if pathCap <= 0 {
		pathCap = defaultPathCap
	}
	return &Assembler{evidenceCap: evidenceCap, pathCap: pathCap}
}

// Build renders the prompt for one query. It includes at most pathCap
// relationship paths and at most evidenceCap passages, in the order they were
// retrieved. Each passage is annotated with its source title and page number
// when known.
func (a *Assembler) Build(query string, evidence []common.EvidenceChunk, paths []common.GraphPath) string {
	var b strings.Builder

	b.WriteString("Answer the question using only the context below. Cite the sources you use. If the context does not contain the answer, say so.\n")

	if len(paths) > 0 {
		b.WriteString("\nKnowledge graph relationships:\n")
		for i, p := range paths {
			if i >= a.pathCap {
				break
			}
			fmt.Fprintf(&b, "- %s -> %s (distance %d)\n", p.From, p.To, p.Depth)
		}
	}

	b.WriteString("\nContext passages:\n")
	for i, chunk := range evidence {
		if i >= a.evidenceCap {
			break
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", sourceLine(chunk.Passage), strings.TrimSpace(chunk.Passage.Text))
	}

	fmt.Fprintf(&b, "\nQuestion: %s\n", query)
	return b.String()
}

func sourceLine(p common.Passage) string {
	title := p.SourceTitle
	if title == "" {
		title = p.DocID
	}
	if p.Page > 0 {
		return fmt.Sprintf("[Source: %s, Page %d]", title, p.Page)
	}
	return fmt.Sprintf("[Source: %s]", title)
}
