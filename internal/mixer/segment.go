package mixer

import "kozelmixer/internal/types"

// SegmentKind tags a segment as fixed in place or free to move.
type SegmentKind int

const (
	Fixed SegmentKind = iota
	Groupable
)

func (k SegmentKind) String() string {
	if k == Groupable {
		return "groupable"
	}
	return "fixed"
}

// Segment is a contiguous run of blocks from one wallet schema.
// Key is set only for Groupable segments.
type Segment struct {
	Kind   SegmentKind
	Key    string
	Blocks []types.Block
}

// segmenter holds the two open buffers. At most one of them has blocks.
type segmenter struct {
	rules *Rules
	out   []Segment

	fixed []types.Block

	group    []types.Block
	groupKey string
	inGroup  bool
}

func (s *segmenter) flushFixed() {
	if len(s.fixed) == 0 {
		return
	}
	s.out = append(s.out, Segment{Kind: Fixed, Blocks: s.fixed})
	s.fixed = nil
}

func (s *segmenter) closeGroup() {
	if !s.inGroup {
		return
	}
	s.out = append(s.out, Segment{Kind: Groupable, Key: s.groupKey, Blocks: s.group})
	s.group = nil
	s.groupKey = ""
	s.inGroup = false
}

func (s *segmenter) openGroup(key string, b types.Block) {
	s.group = []types.Block{b}
	s.groupKey = key
	s.inGroup = true
}

func (s *segmenter) add(b types.Block) {
	if key, ok := s.rules.GroupKey(b); ok {
		switch {
		case !s.inGroup:
			s.flushFixed()
			s.openGroup(key, b)
		case key == s.groupKey:
			s.group = append(s.group, b)
		default:
			s.closeGroup()
			s.openGroup(key, b)
		}
		return
	}

	if s.inGroup && s.rules.Joins(b.Type()) {
		s.group = append(s.group, b)
		return
	}

	s.closeGroup()
	s.fixed = append(s.fixed, b)
}

// Split partitions blocks into maximal fixed and groupable runs.
// Concatenating the returned segments reproduces blocks exactly.
func Split(blocks []types.Block, rules *Rules) []Segment {
	s := &segmenter{rules: rules}
	for _, b := range blocks {
		s.add(b)
	}
	s.closeGroup()
	s.flushFixed()
	return s.out
}
