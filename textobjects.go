// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import "io"

// TextState is the subset of the graphics state that governs glyph
// placement inside a BT/ET text object: the text and line matrices plus
// the character-, word- and line-spacing, horizontal scale, font, font
// size, rendering mode and text rise parameters set by Tc, Tw, Tz, TL,
// Tf, Tr and Ts.
//
// Per §9.4.1 of the PDF specification, BT resets only Tm and Tlm to the
// identity matrix; every other parameter — Tc, Tw, Tz, TL, Tf, Tfs, Tr,
// Ts — persists across text objects within the same content stream.
type TextState struct {
	Tm, Tlm              matrix
	CharSpace, WordSpace float64
	HorizScale           float64
	Leading              float64
	Font                 Key
	FontSize             float64
	RenderMode           int64
	Rise                 float64
}

func defaultTextState() TextState {
	return TextState{
		Tm:         ident,
		Tlm:        ident,
		HorizScale: 1,
	}
}

// resetAtBT applies the one state change a BT operator makes: the text
// and line matrices return to the identity, everything else survives.
func (s *TextState) resetAtBT() {
	s.Tm = ident
	s.Tlm = ident
}

// FontWidthProvider supplies the advance width, in glyph space (1/1000
// text space units), that a code in a given font consumes. Without one,
// GlyphEvent positions accumulate using a zero advance and only the Td/
// TD/Tm/T* repositioning operators move the pen.
type FontWidthProvider interface {
	GlyphWidth(font Key, code uint16) float64
}

// GlyphEvent is one code shown by a Tj/TJ/'/" operator, together with
// the text-space position of its origin at the moment it was shown.
type GlyphEvent struct {
	Position [2]float32
	Code     uint16
	Font     Key
	FontSize float64
}

// TextObjectIterator walks a content stream's operators with
// NewStrictOperatorIterator, maintaining TextState across BT/ET blocks
// and emitting a GlyphEvent for every code a text-showing operator
// displays. Operators outside a text object (graphics state, path
// construction/painting) are skipped; a malformed operator stream
// surfaces as an error from Next rather than being silently ignored,
// since callers walking text need to know a stream was truncated.
type TextObjectIterator struct {
	it     *OperatorIterator
	widths FontWidthProvider
	state  TextState
	inText bool
	queue  []GlyphEvent
}

// NewTextObjectIterator returns an iterator over the glyphs shown by a
// single content stream. widths may be nil, in which case glyph
// positions advance only via explicit repositioning operators.
func NewTextObjectIterator(content []byte, widths FontWidthProvider) *TextObjectIterator {
	return &TextObjectIterator{
		it:     NewStrictOperatorIterator(content),
		widths: widths,
		state:  defaultTextState(),
	}
}

// State returns the text state as of the most recently returned glyph.
func (t *TextObjectIterator) State() TextState {
	return t.state
}

// Next returns the next glyph shown by the content stream, or io.EOF
// once it is exhausted. A stream that ends between BT and ET yields an
// ErrUnterminatedTextObject *ParseError instead of io.EOF.
func (t *TextObjectIterator) Next() (GlyphEvent, error) {
	for len(t.queue) == 0 {
		op, err := t.it.Next()
		if err == io.EOF && t.inText {
			return GlyphEvent{}, &ParseError{Kind: ErrUnterminatedTextObject, Message: "content stream ended inside a text object", Fatal: true}
		}
		if err != nil {
			return GlyphEvent{}, err
		}
		if err := t.apply(op); err != nil {
			return GlyphEvent{}, err
		}
	}
	ev := t.queue[0]
	t.queue = t.queue[1:]
	return ev, nil
}

func operandFloat(v Value) float64 {
	if v.Kind() == Real {
		return v.Float64()
	}
	return float64(v.Int64())
}

func (t *TextObjectIterator) apply(op Operator) error {
	switch op.Mnemonic {
	case "BT":
		if t.inText {
			return &ParseError{Kind: ErrUnterminatedTextObject, Message: "nested BT before matching ET", Fatal: true}
		}
		t.inText = true
		t.state.resetAtBT()
	case "ET":
		if !t.inText {
			return &ParseError{Kind: ErrUnterminatedTextObject, Message: "ET without matching BT", Fatal: true}
		}
		t.inText = false
	case "Tc":
		if len(op.Operands) == 1 {
			t.state.CharSpace = operandFloat(op.Operands[0])
		}
	case "Tw":
		if len(op.Operands) == 1 {
			t.state.WordSpace = operandFloat(op.Operands[0])
		}
	case "Tz":
		if len(op.Operands) == 1 {
			t.state.HorizScale = operandFloat(op.Operands[0]) / 100
		}
	case "TL":
		if len(op.Operands) == 1 {
			t.state.Leading = operandFloat(op.Operands[0])
		}
	case "Tf":
		if len(op.Operands) == 2 {
			t.state.Font = Key(op.Operands[0].Name())
			t.state.FontSize = operandFloat(op.Operands[1])
		}
	case "Tr":
		if len(op.Operands) == 1 {
			t.state.RenderMode = op.Operands[0].Int64()
		}
	case "Ts":
		if len(op.Operands) == 1 {
			t.state.Rise = operandFloat(op.Operands[0])
		}
	case "Td":
		if len(op.Operands) == 2 {
			tx, ty := operandFloat(op.Operands[0]), operandFloat(op.Operands[1])
			t.state.Tlm = translate(t.state.Tlm, tx, ty)
			t.state.Tm = t.state.Tlm
		}
	case "TD":
		if len(op.Operands) == 2 {
			tx, ty := operandFloat(op.Operands[0]), operandFloat(op.Operands[1])
			t.state.Leading = -ty
			t.state.Tlm = translate(t.state.Tlm, tx, ty)
			t.state.Tm = t.state.Tlm
		}
	case "Tm":
		if len(op.Operands) == 6 {
			m := matrixFromOperands(op.Operands)
			t.state.Tlm = m
			t.state.Tm = m
		}
	case "T*":
		t.state.Tlm = translate(t.state.Tlm, 0, -t.state.Leading)
		t.state.Tm = t.state.Tlm
	case "Tj":
		if len(op.Operands) == 1 {
			t.showText(op.Operands[0].RawString())
		}
	case "'":
		t.state.Tlm = translate(t.state.Tlm, 0, -t.state.Leading)
		t.state.Tm = t.state.Tlm
		if len(op.Operands) == 1 {
			t.showText(op.Operands[0].RawString())
		}
	case "\"":
		if len(op.Operands) == 3 {
			t.state.WordSpace = operandFloat(op.Operands[0])
			t.state.CharSpace = operandFloat(op.Operands[1])
			t.state.Tlm = translate(t.state.Tlm, 0, -t.state.Leading)
			t.state.Tm = t.state.Tlm
			t.showText(op.Operands[2].RawString())
		}
	case "TJ":
		if len(op.Operands) == 1 && op.Operands[0].Kind() == Array {
			for i := 0; i < op.Operands[0].Len(); i++ {
				elem := op.Operands[0].Index(i)
				if elem.Kind() == String {
					t.showText(elem.RawString())
				} else {
					adj := operandFloat(elem)
					dx := -adj / 1000 * t.state.FontSize * t.state.HorizScale
					t.state.Tm = translate(t.state.Tm, dx, 0)
				}
			}
		}
	}
	return nil
}

// showText emits one GlyphEvent per byte code in s (simple, single-byte
// fonts; composite CID-keyed fonts are out of scope here, as in the
// rest of this module's text extraction) and advances Tm by each code's
// width plus the character- and word-spacing parameters, exactly as
// §9.4.3 of the PDF specification defines glyph displacement.
func (t *TextObjectIterator) showText(s string) {
	for i := 0; i < len(s); i++ {
		code := uint16(s[i])
		x, y := t.state.Tm[2][0], t.state.Tm[2][1]
		t.queue = append(t.queue, GlyphEvent{
			Position: [2]float32{float32(x), float32(y)},
			Code:     code,
			Font:     t.state.Font,
			FontSize: t.state.FontSize,
		})
		w := 0.0
		if t.widths != nil {
			w = t.widths.GlyphWidth(t.state.Font, code)
		}
		adv := (w/1000*t.state.FontSize + t.state.CharSpace + wordSpaceFor(code, t.state.WordSpace)) * t.state.HorizScale
		t.state.Tm = translate(t.state.Tm, adv, 0)
	}
}

func wordSpaceFor(code uint16, ws float64) float64 {
	if code == ' ' {
		return ws
	}
	return 0
}

// matrixFromOperands builds a text/CTM-style matrix from the six
// operands of a Tm or cm operator, using the same row layout as the
// content-stream interpreter's own "cm" handling: operands a b c d e f
// land at m[0][0] m[0][1] m[1][0] m[1][1] m[2][0] m[2][1].
func matrixFromOperands(operands []Value) matrix {
	var m matrix
	for i := 0; i < 6; i++ {
		m[i/2][i%2] = operandFloat(operands[i])
	}
	m[2][2] = 1
	return m
}

// translate returns a pure translation by (tx, ty) in text space
// composed before m, i.e. the new matrix a caller applying Td's
// "Tlm_new = [1 0 0; 0 1 0; tx ty 1] x Tlm" update expects.
func translate(m matrix, tx, ty float64) matrix {
	t := matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
	return t.mul(m)
}

// drainRemaining reads every operator until io.EOF, used by callers that
// only want the final TextState (e.g. to seed a subsequent page's state
// when several content streams logically concatenate).
func (t *TextObjectIterator) drainRemaining() error {
	for {
		_, err := t.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
