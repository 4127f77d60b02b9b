package mixer

import "math/rand"

// Shuffle permutes the groupable segments uniformly and puts them back into
// the slots groupable segments occupied. Fixed segments keep their index.
// The input slice is left as it was.
func Shuffle(segments []Segment, r *rand.Rand) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)

	var slots []int
	for i, seg := range segments {
		if seg.Kind == Groupable {
			slots = append(slots, i)
		}
	}
	if len(slots) < 2 {
		return out
	}

	groups := make([]Segment, len(slots))
	for i, idx := range slots {
		groups[i] = segments[idx]
	}
	r.Shuffle(len(groups), func(i, j int) {
		groups[i], groups[j] = groups[j], groups[i]
	})
	for i, idx := range slots {
		out[idx] = groups[i]
	}
	return out
}
