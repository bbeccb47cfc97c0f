// Package canonical implements EGDS 2.1's two serialization surfaces (§4.J):
// a deterministic canonical JSON encoding used for hashing (what H_M and any
// signature hashes), and a strict decode path where missing/unknown fields
// produce a structured SerializationError naming the offending field.
//
// Canonical form requires a fixed field order per type. encoding/json always
// emits struct fields in declaration order and never reorders or sorts them,
// so declaring each canonical type's fields in the EGDS-specified order is
// sufficient — no third-party canonical-JSON library appears anywhere in the
// example pack (davinci-node's own canonical-ish DTOs under api/ and
// spec/ballotmode.go's String() method both rely on the same encoding/json
// ordering guarantee), so there is nothing to wire here beyond the standard
// library.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/egcore/egds/egerr"
)

// Marshal encodes v as canonical JSON: compact (no insignificant whitespace),
// struct fields in declaration order, no HTML-escaping of hashable bytes.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, &egerr.SerializationError{Kind: "ParsingJsonError", TypeName: fmt.Sprintf("%T", v), Message: err.Error()}
	}
	// encoding/json's Encoder.Encode appends a trailing newline; canonical
	// bytes must not include it, since they feed directly into a hash.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalStrict decodes data into v, rejecting unknown fields and
// reporting the first error as a SerializationError with the type name and
// approximate line/column of the failure (computed from the decoder's byte
// offset, since encoding/json does not expose them directly).
func UnmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		line, col := lineCol(data, dec.InputOffset())
		return &egerr.SerializationError{
			Kind:     "ParsingJsonError",
			Line:     line,
			Column:   col,
			TypeName: fmt.Sprintf("%T", v),
			Message:  err.Error(),
		}
	}
	return nil
}

// RequireFields checks that every name in required is a true-valued key of
// present (built by the caller from which optional JSON fields were seen),
// returning a SerializationError naming the first missing field. This backs
// the "missing fields report the missing field name" contract for EDO types
// whose Info form uses *T fields.
func RequireFields(typeName string, present map[string]bool, required ...string) error {
	for _, name := range required {
		if !present[name] {
			return &egerr.SerializationError{
				Kind:     "ParsingJsonError",
				TypeName: typeName,
				Message:  fmt.Sprintf("missing required field %q", name),
			}
		}
	}
	return nil
}

func lineCol(data []byte, offset int64) (line, col int) {
	if offset < 0 || offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line = 1
	lastNL := -1
	for i := int64(0); i < offset; i++ {
		if data[i] == '\n' {
			line++
			lastNL = int(i)
		}
	}
	col = int(offset) - lastNL
	return line, col
}
