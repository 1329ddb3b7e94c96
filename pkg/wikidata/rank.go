package wikidata

// Rank orders competing statements for the same property.
// Preferred beats normal, normal beats deprecated, any explicit rank
// beats unranked.
type Rank int

const (
	RankUnranked Rank = iota
	RankDeprecated
	RankNormal
	RankPreferred
)

// ParseRank maps the upstream rank string to a Rank. Unknown or empty
// strings map to RankUnranked.
func ParseRank(s string) Rank {
	switch s {
	case "preferred":
		return RankPreferred
	case "normal":
		return RankNormal
	case "deprecated":
		return RankDeprecated
	default:
		return RankUnranked
	}
}

// String implements fmt.Stringer.
func (r Rank) String() string {
	switch r {
	case RankPreferred:
		return "preferred"
	case RankNormal:
		return "normal"
	case RankDeprecated:
		return "deprecated"
	default:
		return "unranked"
	}
}

// Beats reports whether r outranks other. Equal ranks do not beat each
// other, so first-seen candidates win ties.
func (r Rank) Beats(other Rank) bool {
	return r > other
}

// Usable reports whether a statement with this rank may contribute
// rows at all. Deprecated statements are excluded from set-valued
// targets as well as scalars.
func (r Rank) Usable() bool {
	return r != RankDeprecated
}

// Candidate is a scalar candidate value with the rank it arrived with.
// Rank resolution for "best value" targets is centralized on this type
// so it can be tested without a claim document.
type Candidate[T any] struct {
	Value T
	Rank  Rank
}

// PickCandidate resolves a scalar target from competing candidates:
// the highest rank wins; among equal ranks the earliest candidate
// wins; candidates with unusable ranks never win. The boolean is false
// when no usable candidate exists.
func PickCandidate[T any](cands []Candidate[T]) (Candidate[T], bool) {
	return PickCandidateWith(cands, nil)
}

// PickCandidateWith resolves like PickCandidate, but breaks equal-rank
// ties with prefer when it is non-nil: prefer reports whether a should
// replace the current best b. Release dates use this to settle ties on
// the earliest year regardless of statement order.
func PickCandidateWith[T any](
	cands []Candidate[T],
	prefer func(a, b T) bool,
) (Candidate[T], bool) {
	var best Candidate[T]
	found := false
	for _, c := range cands {
		if !c.Rank.Usable() {
			continue
		}
		switch {
		case !found || c.Rank.Beats(best.Rank):
			best = c
			found = true
		case c.Rank == best.Rank && prefer != nil && prefer(c.Value, best.Value):
			best = c
		}
	}
	return best, found
}

// Applicable reports whether a winning scalar candidate may overwrite
// an already stored value: its rank must be at least normal, so
// low-confidence re-derivations do not churn stored fields.
func (r Rank) Applicable() bool {
	return r >= RankNormal
}
