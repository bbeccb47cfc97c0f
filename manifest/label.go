// Label validation: the Unicode filter of §3. Grounded on
// davinci-node/spec/ballotmode.go's Validate() method shape (a plain
// error-returning checker over a small struct), generalized from numeric
// bounds to the Unicode rune-category rules EGDS requires of every label.
package manifest

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/egcore/egds/egerr"
)

// ValidateLabel checks that the label s of item passes the Unicode label
// filter (it does not normalize s; NFC is applied only by EqualLabels):
//   - no control, format, line/paragraph-separator, or surrogate code points
//   - no leading or trailing whitespace
//   - no internal run of more than one whitespace code point
//   - at least one printable character
//
// On failure it returns an *egerr.LabelError identifying the offending
// rune's 1-based code-point index and 0-based byte offset in s as supplied,
// since that is what the caller will see in their own input.
func ValidateLabel(item, s string) error {
	if s == "" {
		return &egerr.LabelError{Item: item, Reason: "label must not be empty", UnicodeProperty: "Any"}
	}

	hasPrintable := false
	runIsSpace := false
	cpIndex := 0
	for byteOffset, r := range s {
		cpIndex++
		if r == utf8.RuneError {
			return &egerr.LabelError{
				Item: item, Rune: r, CodepointIndex: cpIndex, ByteOffset: byteOffset,
				UnicodeProperty: "Encoding", Reason: "invalid UTF-8 sequence (would encode an unpaired surrogate or is malformed)",
			}
		}
		if unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Zl, r) || unicode.Is(unicode.Zp, r) {
			return &egerr.LabelError{
				Item: item, Rune: r, CodepointIndex: cpIndex, ByteOffset: byteOffset,
				UnicodeProperty: "Cc/Cf/Zl/Zp", Reason: "control, format, or line/paragraph-separator code points are not allowed",
			}
		}
		if unicode.IsSpace(r) {
			if cpIndex == 1 {
				return &egerr.LabelError{
					Item: item, Rune: r, CodepointIndex: cpIndex, ByteOffset: byteOffset,
					UnicodeProperty: "White_Space", Reason: "label must not have leading whitespace",
				}
			}
			if runIsSpace {
				return &egerr.LabelError{
					Item: item, Rune: r, CodepointIndex: cpIndex, ByteOffset: byteOffset,
					UnicodeProperty: "White_Space", Reason: "label must not contain a run of more than one whitespace code point",
				}
			}
			runIsSpace = true
			continue
		}
		runIsSpace = false
		if unicode.IsGraphic(r) {
			hasPrintable = true
		}
	}
	if runIsSpace {
		lastRune, size := utf8.DecodeLastRuneInString(s)
		return &egerr.LabelError{
			Item: item, Rune: lastRune, CodepointIndex: cpIndex, ByteOffset: len(s) - size,
			UnicodeProperty: "White_Space", Reason: "label must not have trailing whitespace",
		}
	}
	if !hasPrintable {
		return &egerr.LabelError{Item: item, Reason: "label must contain at least one printable character", UnicodeProperty: "Graphic"}
	}
	return nil
}

// EqualLabels reports whether a and b are equal after NFC normalization, per
// §3's "text is NFC-normalized for comparison."
func EqualLabels(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}

// must is a small helper for call sites that have already validated their
// input and want a panic instead of plumbing an error. Nothing in the module
// calls it.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("manifest: %v", err))
	}
}
