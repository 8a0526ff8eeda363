package queue

import (
	"fmt"
	"testing"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

func makePassages(n int) []common.Passage {
	passages := make([]common.Passage, n)
	for i := range passages {
		passages[i] = common.Passage{ID: fmt.Sprintf("p%d", i+1), Text: fmt.Sprintf("passage %d", i+1)}
	}
	return passages
}

func TestBatchPassagesSlicesEvenly(t *testing.T) {
	batches := batchPassages(makePassages(6), 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	for i, batch := range batches {
		if len(batch) != 2 {
			t.Fatalf("batch %d: expected 2 passages, got %d", i, len(batch))
		}
	}
	if batches[0][0].ID != "p1" || batches[2][1].ID != "p6" {
		t.Fatalf("batches out of order: first=%s last=%s", batches[0][0].ID, batches[2][1].ID)
	}
}

func TestBatchPassagesUnevenTail(t *testing.T) {
	batches := batchPassages(makePassages(5), 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[2]) != 1 {
		t.Fatalf("expected tail batch of 1, got %d", len(batches[2]))
	}
	if batches[2][0].ID != "p5" {
		t.Fatalf("expected tail passage p5, got %s", batches[2][0].ID)
	}
}

func TestBatchPassagesSizeZeroKeepsSingleBatch(t *testing.T) {
	batches := batchPassages(makePassages(4), 0)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch for size 0, got %d", len(batches))
	}
	if len(batches[0]) != 4 {
		t.Fatalf("expected all 4 passages in one batch, got %d", len(batches[0]))
	}
}

func TestBatchPassagesEmptyInput(t *testing.T) {
	if batches := batchPassages(nil, 3); batches != nil {
		t.Fatalf("expected nil for empty input, got %v", batches)
	}
}

func TestDocumentSectionsFormFeedPages(t *testing.T) {
	sections := documentSections("first page\fsecond page\f\fthird page")
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	if sections[0].Page != 1 || sections[1].Page != 2 {
		t.Fatalf("expected pages 1 and 2, got %d and %d", sections[0].Page, sections[1].Page)
	}
	if sections[2].Page != 4 {
		t.Fatalf("expected blank page skipped and page 4 kept, got %d", sections[2].Page)
	}
}

func TestDocumentSectionsUnpaged(t *testing.T) {
	sections := documentSections("plain text without page breaks")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Page != 0 {
		t.Fatalf("expected page 0 for unpaged text, got %d", sections[0].Page)
	}
}
