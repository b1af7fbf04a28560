package shellexec

import "context"

// ClonePair names one git clone: a URL and an optional destination.
type ClonePair struct {
	URL  string
	Dest string
}

// CloneSpecs builds command specs for a set of git clones.
func CloneSpecs(pairs []ClonePair, dir string, capture bool) []Spec {
	specs := make([]Spec, 0, len(pairs))
	for _, pair := range pairs {
		argv := []string{"git", "clone", pair.URL}
		if pair.Dest != "" {
			argv = append(argv, pair.Dest)
		}
		specs = append(specs, Spec{Argv: argv, Dir: dir, Capture: capture})
	}
	return specs
}

// CloneAll runs the git clones with at most limit in flight.
func CloneAll(ctx context.Context, pairs []ClonePair, dir string, limit int) []Result {
	return RunAll(ctx, CloneSpecs(pairs, dir, true), limit)
}
