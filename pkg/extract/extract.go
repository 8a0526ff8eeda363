package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhishekg1-gl/langgraph/internal/util"
	"github.com/abhishekg1-gl/langgraph/pkg/ai"
	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

type rawEntity struct {
	Name string `json:"name" jsonschema_description:"Name of the entity as it appears in the text"`
	Type string `json:"type" jsonschema_description:"One of the provided entity types"`
}

type rawRelationship struct {
	From     string `json:"from" jsonschema_description:"Name of the source entity, as identified in step 1"`
	FromType string `json:"from_type" jsonschema_description:"Type of the source entity"`
	Type     string `json:"type" jsonschema_description:"Relationship label in UPPER_SNAKE_CASE, e.g. CEO_OF"`
	To       string `json:"to" jsonschema_description:"Name of the target entity, as identified in step 1"`
	ToType   string `json:"to_type" jsonschema_description:"Type of the target entity"`
}

type rawExtraction struct {
	Entities      []rawEntity       `json:"entities" jsonschema_description:"Entities identified in the passage"`
	Relationships []rawRelationship `json:"relationships" jsonschema_description:"Relationships identified in the passage"`
}

// Extraction is the validated result of one extraction call. Entities and
// Relationships are always non-nil; a failed call degrades to the empty
// extraction with Diagnostic set rather than an error.
type Extraction struct {
	Entities      []common.Entity
	Relationships []common.Relationship
	Diagnostic    string
}

// Empty reports whether the extraction found nothing.
func (e Extraction) Empty() bool {
	return len(e.Entities) == 0 && len(e.Relationships) == 0
}

// Extractor turns passage text into validated entities and relationships via
// a structured generation call.
type Extractor struct {
	client        ai.Client
	timeout       time.Duration
	truncateChars int
}

// NewExtractorParams configures a new Extractor.
type NewExtractorParams struct {
	Client        ai.Client
	Timeout       time.Duration
	TruncateChars int
}

// NewExtractor creates an Extractor. Timeout bounds each generation call;
// TruncateChars bounds the text sent per call.
func NewExtractor(params NewExtractorParams) *Extractor {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	truncate := params.TruncateChars
	if truncate <= 0 {
		truncate = 4000
	}
	return &Extractor{
		client:        params.Client,
		timeout:       timeout,
		truncateChars: truncate,
	}
}

// Extract runs one extraction call over the passage's text and validates the
// result.
//
// Recoverable failures never surface as errors: a timed-out or malformed
// generation yields the empty extraction with a diagnostic attached. Only a
// backend that cannot be reached at all returns an error.
func (e *Extractor) Extract(ctx context.Context, passage common.Passage) (Extraction, error) {
	text := util.TruncateChars(passage.Text, e.truncateChars)
	if strings.TrimSpace(text) == "" {
		return emptyExtraction(""), nil
	}

	systemPrompt := fmt.Sprintf(
		ExtractPrompt,
		strings.Join(common.EntityTypes(), ","),
		strings.Join(common.EntityTypes(), ","),
	)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var raw rawExtraction
	err := e.client.GenerateCompletionWithFormat(
		callCtx,
		"extract_entities_and_relationships",
		"Extract entities and relationships from a provided passage.",
		text,
		&raw,
		ai.WithSystemPrompts(systemPrompt),
		ai.WithTemperature(0.0),
	)
	if err != nil {
		// The parent context expiring is the caller's cancellation, not an
		// extraction timeout.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return emptyExtraction("extraction timed out"), nil
		}
		if errors.Is(err, ai.ErrMalformedOutput) {
			return emptyExtraction(fmt.Sprintf("malformed extraction output: %v", err)), nil
		}
		return emptyExtraction(""), fmt.Errorf("extraction call failed: %w", err)
	}

	return validate(raw, passage), nil
}

func emptyExtraction(diagnostic string) Extraction {
	return Extraction{
		Entities:      []common.Entity{},
		Relationships: []common.Relationship{},
		Diagnostic:    diagnostic,
	}
}

// validate applies the drop rules to raw model output: entities without a
// name or with a type outside the allow-list are dropped silently, as are
// relationships missing either endpoint, an endpoint type, or a label. Every
// kept element is stamped with the passage's provenance.
func validate(raw rawExtraction, passage common.Passage) Extraction {
	now := time.Now().UTC()
	ref := common.Provenance{
		DocID:       passage.DocID,
		PassageID:   passage.ID,
		ExtractedAt: now,
	}

	out := emptyExtraction("")
	for _, ent := range raw.Entities {
		name := strings.TrimSpace(ent.Name)
		entType := common.CanonicalEntityType(ent.Type)
		if name == "" || entType == "" {
			continue
		}
		out.Entities = append(out.Entities, common.Entity{
			Name:       name,
			Type:       entType,
			Provenance: []common.Provenance{ref},
		})
	}

	for _, rel := range raw.Relationships {
		from := strings.TrimSpace(rel.From)
		to := strings.TrimSpace(rel.To)
		fromType := common.CanonicalEntityType(rel.FromType)
		toType := common.CanonicalEntityType(rel.ToType)
		label := normalizeLabel(rel.Type)
		if from == "" || to == "" || fromType == "" || toType == "" || label == "" {
			continue
		}
		out.Relationships = append(out.Relationships, common.Relationship{
			From:       from,
			FromType:   fromType,
			Type:       label,
			To:         to,
			ToType:     toType,
			Provenance: []common.Provenance{ref},
		})
	}

	return out
}

// normalizeLabel sanitizes a relationship label to UPPER_SNAKE_CASE built
// from letters, digits, and underscores. Labels are stored and matched as
// plain data and never interpolated into a traversal query.
func normalizeLabel(label string) string {
	label = strings.ToUpper(strings.TrimSpace(label))
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
