package property

import (
	"fmt"

	"github.com/meigma/pak/internal/cursor"
)

const keySize = cursor.HexDigestSize

// Text is a localized string: a namespace, a 32-character key and the
// source string. A Text with an empty Value is serialized as the absent
// marker and carries no namespace or key.
type Text struct {
	Flags     [4]byte
	Namespace string
	Key       string
	Value     string

	// raw is the payload as loaded; it is re-emitted while the decoded
	// fields still match orig so strings keep their source encoding.
	raw  []byte
	orig textFields
}

type textFields struct {
	flags                 [4]byte
	namespace, key, value string
}

// Kind returns KindText.
func (p *Text) Kind() Kind { return KindText }

// Absent reports whether the text serializes as the no-text marker.
func (p *Text) Absent() bool {
	return p.Value == ""
}

// Set replaces the string. Clearing it makes the text absent; giving a
// value to an absent text requires a localization key.
func (p *Text) Set(v string) error {
	if v != "" && len(p.Key) != keySize {
		return fmt.Errorf("%w: text has no localization key", ErrMalformed)
	}
	p.Value = v
	return nil
}

func (p *Text) fields() textFields {
	return textFields{flags: p.Flags, namespace: p.Namespace, key: p.Key, value: p.Value}
}

// Clone returns a deep copy.
func (p *Text) Clone() Property {
	c := *p
	c.raw = append([]byte(nil), p.raw...)
	return &c
}
