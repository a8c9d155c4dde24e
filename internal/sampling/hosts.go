package sampling

import "slices"

// SampleHosts draws min(n, |all|) distinct hosts uniformly without
// replacement. The input is sorted and deduplicated first, so the result does
// not depend on the order hosts were read in. The result is sorted.
// n <= 0 yields an empty set; n >= |all| returns every host without drawing.
func SampleHosts(r *Rand, all []string, n int) []string {
	hosts := canonical(all)
	if n <= 0 {
		return []string{}
	}
	if n >= len(hosts) {
		return hosts
	}

	chosen := r.choose(hosts, n)
	slices.Sort(chosen)
	return chosen
}

// CapPositives keeps min(|positives|, limit) of a host's positives, chosen
// uniformly without replacement. The result is sorted. limit <= 0 keeps none;
// a host already within the cap keeps all without drawing.
func CapPositives(r *Rand, positives []string, limit int) []string {
	set := canonical(positives)
	if limit <= 0 {
		return []string{}
	}
	if len(set) <= limit {
		return set
	}

	kept := r.choose(set, limit)
	slices.Sort(kept)
	return kept
}
