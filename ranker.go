package mockwire

// candidate is a definition that matched a request, together with its
// extracted path parameters.
type candidate struct {
	def    *Definition
	params map[string]string
}

// pickWinner selects exactly one definition among all that matched.
// Ordering: priority descending, then path specificity descending
// (literal segments outrank parameter segments), then registration
// order. The registration-order tie-break is deliberate, not an error:
// registering the same shape twice makes the first one win.
func pickWinner(candidates []candidate, cfg Config) (candidate, bool) {
	if len(candidates) == 0 {
		return candidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if outranks(c, best, cfg) {
			best = c
		}
	}
	return best, true
}

// outranks reports whether a should be preferred over b.
func outranks(a, b candidate, cfg Config) bool {
	ap, bp := a.def.priorityIn(cfg), b.def.priorityIn(cfg)
	if ap != bp {
		return ap > bp
	}
	as, bs := a.def.pattern.specificity, b.def.pattern.specificity
	if as != bs {
		return as > bs
	}
	return a.def.seq < b.def.seq
}
