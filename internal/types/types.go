// Package types provides the block and batch data structures shared by the
// mixer core and the CLI layer.
// Types in this package are plain data with no dependencies beyond encoding/json.
package types

import (
	"encoding/json"
	"fmt"
)

// Well-known block fields read or written by the mixer.
const (
	FieldBlock     = "block"
	FieldSymbol    = "symbol"
	FieldDex       = "dex"
	FieldMsg       = "msg"
	FieldAmount    = "amount"
	FieldMinAmount = "min_amount"
	FieldProxy     = "proxy"
)

// Well-known block types.
const (
	BlockSwap       = "swap"
	BlockReqRPC     = "reqRpc"
	BlockAnyExecute = "anyExecute"
	BlockSaveVar    = "saveVar"
	BlockDelay      = "delay"
	BlockWallet     = "wallet"
)

// Block is one task-definition record of a wallet's action sequence.
// Fields other than the well-known ones are opaque and carried through as-is.
type Block map[string]any

// Type returns the block's "block" field, or "" when absent or not a string.
func (b Block) Type() string {
	t, _ := b[FieldBlock].(string)
	return t
}

// String returns a string field and whether it was present as a string.
func (b Block) String(field string) (string, bool) {
	s, ok := b[field].(string)
	return s, ok
}

// Clone returns a shallow copy. Nested values are shared with the original.
func (b Block) Clone() Block {
	if b == nil {
		return nil
	}
	out := make(Block, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// WalletSchema is the ordered list of Blocks for one wallet.
type WalletSchema []Block

// Types returns the block types in order, handy for logs and plans.
func (s WalletSchema) Types() []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = b.Type()
	}
	return out
}

// UnmarshalJSON decodes a list of block objects, keeping numbers as
// json.Number. Null entries are rejected.
func (s *WalletSchema) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wallet schema must be a list of blocks: %w", err)
	}
	out := make(WalletSchema, 0, len(raw))
	for i, item := range raw {
		var b Block
		if err := decodeNumbers(item, &b); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if b == nil {
			return fmt.Errorf("block %d: expected an object, got null", i)
		}
		out = append(out, b)
	}
	*s = out
	return nil
}
