package retriever

import (
	"sort"

	"github.com/abhishekg1-gl/langgraph/pkg/common"
)

// graphOriginBonus is the fixed additive score credited to graph-origin
// chunks, which carry no similarity score of their own.
const graphOriginBonus = 0.15

// RankChunks returns the evidence set reordered by a linear combination of
// semantic score and a fixed bonus for graph-origin chunks. Ranking is purely
// presentational: membership is untouched and the input slice is not
// modified.
func RankChunks(chunks []common.EvidenceChunk) []common.EvidenceChunk {
	ranked := make([]common.EvidenceChunk, len(chunks))
	copy(ranked, chunks)

	sort.SliceStable(ranked, func(i, j int) bool {
		return rankScore(ranked[i]) > rankScore(ranked[j])
	})
	return ranked
}

func rankScore(chunk common.EvidenceChunk) float64 {
	score := chunk.Score
	if chunk.Origin == common.OriginGraph {
		score += graphOriginBonus
	}
	return score
}
