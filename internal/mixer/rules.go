package mixer

import (
	"fmt"
	"strings"

	"kozelmixer/internal/types"
)

// GroupRule derives a group key for one block type.
// With Constant set every block of the type shares that key; otherwise the
// key is the lower-cased prefix of Field up to the first ':'.
type GroupRule struct {
	Block    string
	Field    string
	Constant string
}

// Rules is the grouping table consulted by the segmenter.
type Rules struct {
	groupable map[string]GroupRule
	join      map[string]struct{}
}

// DefaultGroupRules is the table used when no override is configured.
func DefaultGroupRules() []GroupRule {
	return []GroupRule{
		{Block: types.BlockSwap, Constant: "swap"},
		{Block: types.BlockReqRPC, Field: types.FieldSymbol},
		{Block: types.BlockSaveVar, Field: types.FieldSymbol},
		{Block: types.BlockAnyExecute, Field: types.FieldDex},
	}
}

// DefaultJoinBlocks lists block types that ride along with an open group.
func DefaultJoinBlocks() []string {
	return []string{types.BlockDelay}
}

// NewRules builds a table. A later rule for the same block type replaces an
// earlier one.
func NewRules(groups []GroupRule, join []string) (*Rules, error) {
	r := &Rules{
		groupable: make(map[string]GroupRule, len(groups)),
		join:      make(map[string]struct{}, len(join)),
	}
	for i, g := range groups {
		if g.Block == "" {
			return nil, fmt.Errorf("group rule %d: block type is required", i)
		}
		if g.Field == "" && g.Constant == "" {
			return nil, fmt.Errorf("group rule %q: field or constant is required", g.Block)
		}
		r.groupable[g.Block] = g
	}
	for _, j := range join {
		if j == "" {
			return nil, fmt.Errorf("join block type must not be empty")
		}
		if _, ok := r.groupable[j]; ok {
			return nil, fmt.Errorf("block type %q cannot be both groupable and join", j)
		}
		r.join[j] = struct{}{}
	}
	return r, nil
}

// DefaultRules returns the built-in table.
func DefaultRules() *Rules {
	r, err := NewRules(DefaultGroupRules(), DefaultJoinBlocks())
	if err != nil {
		panic(err)
	}
	return r
}

// GroupKey returns the group key of b, or ok=false when its type is not
// groupable or the key field is missing, not a string, or has an empty prefix.
func (r *Rules) GroupKey(b types.Block) (key string, ok bool) {
	rule, found := r.groupable[b.Type()]
	if !found {
		return "", false
	}
	if rule.Constant != "" {
		return rule.Constant, true
	}
	raw, present := b.String(rule.Field)
	if !present {
		return "", false
	}
	key, _, _ = strings.Cut(strings.ToLower(raw), ":")
	if key == "" {
		return "", false
	}
	return key, true
}

// Joins reports whether blocks of type t attach to an open group.
func (r *Rules) Joins(t string) bool {
	_, ok := r.join[t]
	return ok
}
