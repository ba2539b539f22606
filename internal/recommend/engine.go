// Package recommend maps an animal profile to at most three product suggestions.
package recommend

// MaxResults bounds every recommendation list.
const MaxResults = 3

type pairKey struct{ brand, product string }

// Recommend returns up to MaxResults suggestions for p. Output depends only on p;
// when no rule matches the fixed fallback list is returned.
func Recommend(p AnimalProfile) []Recommendation {
	var matched []Recommendation
	for _, r := range rules {
		if r.match(p) {
			matched = append(matched, r.entries...)
		}
	}
	if len(matched) == 0 {
		return clone(fallback)
	}

	seen := make(map[pairKey]bool, len(matched))
	out := make([]Recommendation, 0, MaxResults)
	for _, rec := range matched {
		k := pairKey{rec.Brand, rec.Product}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, rec)
		if len(out) == MaxResults {
			break
		}
	}
	return clone(out)
}

// MatchedRules names the rules that fire for p, in table order.
func MatchedRules(p AnimalProfile) []string {
	names := []string{}
	for _, r := range rules {
		if r.match(p) {
			names = append(names, r.name)
		}
	}
	return names
}

// clone copies tag slices so callers cannot mutate the table.
func clone(in []Recommendation) []Recommendation {
	out := make([]Recommendation, len(in))
	for i, r := range in {
		r.Tags = append([]string(nil), r.Tags...)
		out[i] = r
	}
	return out
}
