// Package egerr defines the structured error taxonomy used across the core:
// arithmetic, label, validation, public-key, proof, resource-production and
// serialization errors. Each category is its own type so callers can
// errors.As into the concrete variant instead of matching on strings.
package egerr

import "fmt"

// ArithmeticError reports an out-of-range integer conversion, e.g. a
// selection limit or Uint31 value that overflows its supported range.
type ArithmeticError struct {
	Op    string
	Value string
	Bound string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic: %s: value %s exceeds bound %s", e.Op, e.Value, e.Bound)
}

// LabelError reports a Unicode label-rule violation.
type LabelError struct {
	Item            string // what was being labeled, e.g. "contest[2]" or "option[1].label"
	Rune            rune
	CodepointIndex  int // 1-based
	ByteOffset      int // 0-based
	UnicodeProperty string
	Reason          string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label: %s: rune %q (codepoint #%d, byte offset %d) violates %s: %s",
		e.Item, e.Rune, e.CodepointIndex, e.ByteOffset, e.UnicodeProperty, e.Reason)
}

// ValidationError reports a structural invariant violation of an EDO.
type ValidationError struct {
	Kind   string // e.g. "IncorrectQtyOfContestOptionFieldsPlaintexts"
	Detail string
	Fields map[string]any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s %v", e.Kind, e.Detail, e.Fields)
}

// PublicKeyValidationError reports a guardian public-key structural failure.
type PublicKeyValidationError struct {
	Kind   string // IndexOutOfRange, NameContainsNewLine, NoCommitments, InadequateNumberOfCommitments, InvalidProof
	Detail string
}

func (e *PublicKeyValidationError) Error() string {
	return fmt.Sprintf("guardian public key: %s: %s", e.Kind, e.Detail)
}

// ProofError reports a zero-knowledge proof verification failure.
type ProofError struct {
	Kind      string // e.g. "RangeNotSatisfied"
	ContestIx int
	FieldIx   int
	SmallL    int
	BigL      int
	Detail    string
}

func (e *ProofError) Error() string {
	if e.Kind == "RangeNotSatisfied" {
		return fmt.Sprintf("proof: contest %d field %d: RangeNotSatisfied{small_l: %d, big_l: %d}",
			e.ContestIx, e.FieldIx, e.SmallL, e.BigL)
	}
	return fmt.Sprintf("proof: contest %d field %d: %s: %s", e.ContestIx, e.FieldIx, e.Kind, e.Detail)
}

// ResourceProductionError reports a failure in the resource production graph.
// Kind is one of: NoProducerFound, UnexpectedResourceIdFormatRequested,
// CouldntDowncastResource, DependencyProductionError, RecursionDetected,
// ProductionBudgetInsufficient, ResourceNoLongerNeeded.
type ResourceProductionError struct {
	Kind   string
	RidFmt string
	Chain  []string // populated for RecursionDetected
	Cause  error
}

func (e *ResourceProductionError) Error() string {
	switch e.Kind {
	case "RecursionDetected":
		return fmt.Sprintf("resource production: RecursionDetected{chain: %v}", e.Chain)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("resource production: %s: %s: %v", e.Kind, e.RidFmt, e.Cause)
		}
		return fmt.Sprintf("resource production: %s: %s", e.Kind, e.RidFmt)
	}
}

func (e *ResourceProductionError) Unwrap() error { return e.Cause }

// SerializationError reports a canonical-encoding failure.
type SerializationError struct {
	Kind     string // ParsingJsonError
	Line     int
	Column   int
	TypeName string
	Message  string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization: %s: %s at %d:%d: %s", e.Kind, e.TypeName, e.Line, e.Column, e.Message)
}
