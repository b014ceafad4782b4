// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

// Key is a PDF name object, e.g. /Type, decoded from its #xx escapes.
type Key string

// RawArray is a PDF array whose elements have already been decoded to Go
// values (int64, float64, string, Key, bool, nil, RawArray, Reference, or
// *RawDict).
type RawArray []interface{}

// RawDict is an ordered key/value map read from a "<< ... >>" dictionary,
// where each value is kept as the raw byte span it occupied in the
// source buffer rather than eagerly decoded. Callers pull out the keys
// they need, in whatever order FromRawDict wants them, via Pop or
// PopAndExtract; a key never consulted is never parsed.
type RawDict struct {
	order []Key
	raw   map[Key][]byte
}

func newRawDict() *RawDict {
	return &RawDict{raw: make(map[Key][]byte)}
}

// Keys returns the dictionary's keys in the order they appeared.
func (d *RawDict) Keys() []Key {
	return d.order
}

// Has reports whether key is present.
func (d *RawDict) Has(key Key) bool {
	_, ok := d.raw[key]
	return ok
}

// Raw returns the undecoded byte span for key, without removing it.
func (d *RawDict) Raw(key Key) ([]byte, bool) {
	b, ok := d.raw[key]
	return b, ok
}

// Pop removes and returns the raw byte span for key.
func (d *RawDict) Pop(key Key) ([]byte, bool) {
	b, ok := d.raw[key]
	if !ok {
		return nil, false
	}
	delete(d.raw, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return b, true
}

// PopAndExtract removes key's raw span and decodes it with extract. It
// fails if key is absent (use Option for an optional key).
func PopAndExtract[T any](d *RawDict, key Key, extract func(*cursor) (T, error)) (T, error) {
	var zero T
	raw, ok := d.Pop(key)
	if !ok {
		return zero, newParseError(ErrMissingRequiredKey, nil, 0, false, "missing required key %q", string(key))
	}
	c := newCursor(raw)
	v, err := extract(c)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Option removes key's raw span and decodes it if present, reporting
// false with the zero value when the key is absent.
func Option[T any](d *RawDict, key Key, extract func(*cursor) (T, error)) (T, bool, error) {
	var zero T
	raw, ok := d.Pop(key)
	if !ok {
		return zero, false, nil
	}
	c := newCursor(raw)
	v, err := extract(c)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// OptRef removes key's raw span and decodes it as a typed indirect
// reference, reporting false when the key is absent.
func OptRef[T any](d *RawDict, key Key) (TypedReference[T], bool, error) {
	raw, ok := d.Pop(key)
	if !ok {
		return TypedReference[T]{}, false, nil
	}
	c := newCursor(raw)
	c.skipWhitespace()
	ref, err := extractReference(c)
	if err != nil {
		return TypedReference[T]{}, false, err
	}
	return TypedReference[T]{Reference: ref}, true, nil
}

// MaybeArray removes key's raw span and decodes it as a slice of T,
// accepting either a single bare T (common in practice for a
// one-element /Kids-like entry) or a proper PDF array of them. A
// missing key yields a nil slice and no error.
func MaybeArray[T any](d *RawDict, key Key, extract func(*cursor) (T, error)) ([]T, error) {
	raw, ok := d.Pop(key)
	if !ok {
		return nil, nil
	}
	c := newCursor(raw)
	c.skipWhitespace()
	if b, ok := c.peek(); ok && b == '[' {
		c.advance(1)
		var out []T
		for {
			c.skipWhitespace()
			if b, ok := c.peek(); ok && b == ']' {
				c.advance(1)
				return out, nil
			}
			if c.atEOF() {
				return nil, c.fail(ErrMalformedSyntax, true, "unterminated array")
			}
			v, err := extract(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	v, err := extract(c)
	if err != nil {
		return nil, err
	}
	return []T{v}, nil
}

// FromRawDict is implemented by pointer receivers of types the page-tree
// and related pipelines build directly out of a dictionary's raw spans.
type FromRawDict interface {
	FromRawDict(d *RawDict) error
}

// fromRawDictPtr constrains BuildFromRawDict's type parameter pair: T is
// the value type, PT is a pointer to it implementing FromRawDict.
type fromRawDictPtr[T any] interface {
	*T
	FromRawDict(d *RawDict) error
}

// BuildFromRawDict decodes d into a fresh T via T's FromRawDict method.
func BuildFromRawDict[T any, PT fromRawDictPtr[T]](d *RawDict) (T, error) {
	var v T
	pv := PT(&v)
	if err := pv.FromRawDict(d); err != nil {
		return v, err
	}
	return v, nil
}

// extractRawDict parses a "<< ... >>" dictionary, recording each value's
// raw byte span without decoding it.
func extractRawDict(c *cursor) (*RawDict, error) {
	if !c.consumeLiteral("<<") {
		return nil, c.fail(ErrMalformedSyntax, false, "expected dictionary")
	}
	d := newRawDict()
	for {
		c.skipWhitespace()
		if b, ok := c.peek(); ok && b == '>' {
			if b2, ok2 := c.peekAt(1); ok2 && b2 == '>' {
				c.advance(2)
				return d, nil
			}
		}
		if c.atEOF() {
			return nil, c.fail(ErrMalformedSyntax, true, "unterminated dictionary")
		}
		key, err := extractName(c)
		if err != nil {
			return nil, err
		}
		c.skipWhitespace()
		start := c.pos
		if _, err := extractValue(c); err != nil {
			return nil, err
		}
		span := make([]byte, c.pos-start)
		copy(span, c.buf[start:c.pos])
		if _, exists := d.raw[key]; !exists {
			d.order = append(d.order, key)
		}
		d.raw[key] = span
	}
}
