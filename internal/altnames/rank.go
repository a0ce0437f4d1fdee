package altnames

import "sort"

// Candidate is a filtered row carrying its precedence rank.
type Candidate struct {
	AlternateName
	Rank int
}

// NewCandidate ranks rec.
func NewCandidate(rec AlternateName) Candidate {
	return Candidate{AlternateName: rec, Rank: Precedence(rec.Language)}
}

// Less orders candidates by geoname id, then rank, then preferred names
// first, then non-short names first.
func Less(a, b Candidate) bool {
	if a.GeonameID != b.GeonameID {
		return a.GeonameID < b.GeonameID
	}
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	if ap, bp := a.Preferred.True(), b.Preferred.True(); ap != bp {
		return ap
	}
	if as, bs := a.Short.True(), b.Short.True(); as != bs {
		return !as
	}
	return false
}

// SortAndDedupe stable-sorts candidates with Less and keeps the first row per
// geoname id. The input slice is reordered in place.
func SortAndDedupe(candidates []Candidate) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return Less(candidates[i], candidates[j])
	})
	out := candidates[:0]
	for i, c := range candidates {
		if i > 0 && c.GeonameID == out[len(out)-1].GeonameID {
			continue
		}
		out = append(out, c)
	}
	return out
}
