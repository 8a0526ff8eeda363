package chunker

import (
	"fmt"
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

// Section is one page-sized slice of raw document text handed over by the
// upstream parser. Page is zero when the source has no page numbering.
type Section struct {
	Page int
	Text string
}

// Chunker splits document text into token-bounded passages. Splits happen at
// sentence boundaries so a passage never starts mid-sentence; a single
// sentence longer than the token budget becomes its own passage.
type Chunker struct {
	encoder   *tiktoken.Tiktoken
	maxTokens int
}

// New creates a Chunker using the named tiktoken encoding and a per-passage
// token budget.
func New(encoding string, maxTokens int) (*Chunker, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load token encoding %q: %w", encoding, err)
	}
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &Chunker{encoder: enc, maxTokens: maxTokens}, nil
}

// Split turns a document's sections into passages. Each passage carries its
// document ID, source title, page number, and ordinal position. Ordinals run
// across the whole document, not per page.
func (c *Chunker) Split(docID string, sourceTitle string, sections []Section) ([]common.Passage, error) {
	passages := make([]common.Passage, 0)
	ordinal := 0

	for _, section := range sections {
		texts := c.splitSection(section.Text)
		for _, text := range texts {
			id, err := gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("failed to generate passage ID: %w", err)
			}
			passages = append(passages, common.Passage{
				ID:          id,
				DocID:       docID,
				SourceTitle: sourceTitle,
				Page:        section.Page,
				Ordinal:     ordinal,
				Text:        text,
			})
			ordinal++
		}
	}

	return passages, nil
}

func (c *Chunker) splitSection(text string) []string {
	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	chunks := make([]string, 0)
	var current strings.Builder
	currentTokens := 0

	for _, sentence := range sentences {
		tokens := len(c.encoder.Encode(sentence, nil, nil))
		if currentTokens > 0 && currentTokens+tokens > c.maxTokens {
			chunks = append(chunks, current.String())
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += tokens
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitIntoSentences splits text at sentence terminators. Line breaks inside
// a sentence collapse into single spaces; blank lines always terminate the
// current sentence.
func splitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		for _, r := range trimmed {
			current.WriteRune(r)
			if isSentenceTerminator(r) {
				flush()
			}
		}
		if current.Len() > 0 {
			current.WriteRune(' ')
		}
	}
	flush()

	return sentences
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return unicode.Is(unicode.Sentence_Terminal, r)
}
