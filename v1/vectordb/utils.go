package vectordb

import (
	"math"
	"sort"
)

// CosineDistance returns 1 - cos(a, b). A zero vector is at distance 1 from
// everything. The vectors must have the same length.
func CosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}

// RankByDistance scores every record against query and returns the topK
// closest as hits. Ties keep insertion order. Records of a different
// dimension are skipped.
func RankByDistance(records []Record, query []float32, topK int) []Hit {
	hits := make([]Hit, 0, len(records))
	for _, r := range records {
		if len(r.Vector) != len(query) {
			continue
		}
		hits = append(hits, Hit{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: CosineDistance(r.Vector, query),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}
