package mixer

import "kozelmixer/internal/types"

// Flatten concatenates segment blocks in order.
func Flatten(segments []Segment) types.WalletSchema {
	n := 0
	for _, seg := range segments {
		n += len(seg.Blocks)
	}
	out := make(types.WalletSchema, 0, n)
	for _, seg := range segments {
		out = append(out, seg.Blocks...)
	}
	return out
}
