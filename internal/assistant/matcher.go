// internal/assistant/matcher.go
package assistant

const DefaultAcceptanceThreshold = 0.2

// MatchResult is the outcome of one resolution. Intent is empty when nothing scored above
// the threshold.
type MatchResult struct {
	Intent  string
	Pattern string
	Score   float64
}

func (m MatchResult) Matched() bool {
	return m.Intent != ""
}

// Jaccard returns |a ∩ b| / |a ∪ b| over the distinct tokens of a and b. Two empty sets
// score 0.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	union := len(setA)
	intersection := 0
	for tok := range setB {
		if _, ok := setA[tok]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

type Matcher struct {
	catalog   *Catalog
	threshold float64
}

func NewMatcher(catalog *Catalog, threshold float64) *Matcher {
	return &Matcher{catalog: catalog, threshold: threshold}
}

// Resolve scores tokens against every pattern in catalog order. A candidate replaces the
// current best only when it is strictly above both the best score and the threshold, so
// the earliest pattern wins ties.
func (m *Matcher) Resolve(tokens []string) MatchResult {
	var best MatchResult
	if len(tokens) == 0 {
		return best
	}

	for _, entry := range m.catalog.entries {
		for _, p := range entry.patterns {
			score := Jaccard(tokens, p.tokens)
			if score > best.Score && score > m.threshold {
				best = MatchResult{
					Intent:  entry.intent.Name,
					Pattern: p.phrase,
					Score:   score,
				}
			}
		}
	}

	return best
}

// ResolveIntent is Resolve reduced to the intent name.
func (m *Matcher) ResolveIntent(tokens []string) (string, bool) {
	res := m.Resolve(tokens)
	return res.Intent, res.Matched()
}
