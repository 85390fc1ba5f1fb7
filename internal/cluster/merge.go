package cluster

import "github.com/user/log-triage/internal/domain"

// DefaultSimilarityThreshold is the minimum normalized-edit-distance
// similarity between two message templates for their clusters to merge.
const DefaultSimilarityThreshold = 0.7

// Merger absorbs near-duplicate clusters into each other as a post-pass
// over the engine's output.
//
// The pass is greedy and single-sweep in input order: a later cluster folds
// into the earliest unmerged cluster it matches. With three-way similarity
// chains (A~B, B~C, A!~C) the outcome depends on input order; that matches
// the observable behavior downstream consumers rely on, so it is kept
// rather than replaced with a transitive closure.
type Merger struct {
	threshold float64
}

// NewMerger creates a Merger. threshold <= 0 uses
// DefaultSimilarityThreshold.
func NewMerger(threshold float64) *Merger {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Merger{threshold: threshold}
}

// Merge reduces the cluster list by folding matching clusters together,
// then recomputes severities and re-sorts by occurrence count.
func (m *Merger) Merge(clusters []domain.ErrorCluster) []domain.ErrorCluster {
	if len(clusters) <= 1 {
		return clusters
	}

	merged := make([]bool, len(clusters))
	result := make([]domain.ErrorCluster, 0, len(clusters))

	for i := range clusters {
		if merged[i] {
			continue
		}
		primary := clusters[i]

		for j := i + 1; j < len(clusters); j++ {
			if merged[j] {
				continue
			}
			if m.shouldMerge(&primary, &clusters[j]) {
				absorb(&primary, &clusters[j])
				merged[j] = true
			}
		}

		primary.Severity = domain.SeverityForCount(primary.OccurrenceCount)
		result = append(result, primary)
	}

	sortByCount(result)
	return result
}

func (m *Merger) shouldMerge(a, b *domain.ErrorCluster) bool {
	if a.ExceptionClass == b.ExceptionClass &&
		Similarity(a.MessagePattern, b.MessagePattern) >= m.threshold {
		return true
	}

	if a.HasPrimaryLocation() && b.HasPrimaryLocation() &&
		a.PrimaryClass == b.PrimaryClass &&
		a.PrimaryMethod == b.PrimaryMethod &&
		a.PrimaryLine == b.PrimaryLine {
		return true
	}

	return false
}

// absorb folds the secondary cluster's members into the primary and
// recomputes the primary's aggregates from the appended records.
func absorb(primary, secondary *domain.ErrorCluster) {
	for _, rec := range secondary.Records {
		update(primary, rec)
	}
}

// Levenshtein computes the edit distance between two strings.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(min(prev[j]+1, cur[j-1]+1), prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(rb)]
}

// Similarity returns 1 - distance/maxLen in [0, 1]. Two empty strings are
// identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}
