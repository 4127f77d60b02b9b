package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DefaultUID tags a Result whose input batch carried no asset.
const DefaultUID = "mixed_data"

// Batch is the decoded input: a bare list of wallet schemas, or an object
// with an optional asset tag and a tasklist.
type Batch struct {
	Asset    string
	Tasklist []WalletSchema
}

type batchObject struct {
	Asset    string         `json:"asset"`
	Tasklist []WalletSchema `json:"tasklist"`
}

// UnmarshalJSON accepts both batch shapes.
func (b *Batch) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return fmt.Errorf("empty batch document")
	}

	if trimmed[0] == '[' {
		var list []WalletSchema
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*b = Batch{Tasklist: list}
		return nil
	}

	var obj batchObject
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	*b = Batch{Asset: obj.Asset, Tasklist: obj.Tasklist}
	return nil
}

// UID returns the tag the output batch should carry.
func (b Batch) UID() string {
	if b.Asset != "" {
		return b.Asset
	}
	return DefaultUID
}

// Result is the mixer output, serialized as {"uid": ..., "tasklist": [...]}.
type Result struct {
	UID      string         `json:"uid"`
	Tasklist []WalletSchema `json:"tasklist"`
}

// DecodeBatch reads a batch document from r.
func DecodeBatch(r io.Reader) (Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Batch{}, fmt.Errorf("failed to read batch: %w", err)
	}
	var b Batch
	if err := json.Unmarshal(data, &b); err != nil {
		return Batch{}, fmt.Errorf("failed to parse batch: %w", err)
	}
	return b, nil
}

// EncodeResult writes res as two-space indented JSON followed by a newline.
func EncodeResult(w io.Writer, res Result) error {
	if res.Tasklist == nil {
		res.Tasklist = []WalletSchema{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
