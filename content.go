// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import (
	"bytes"
	"fmt"
	"io"

	"github.com/livre-go/livre/logger"
)

// An Operator is one content-stream instruction: a mnemonic (such as "Tj"
// or "re") together with the operands that preceded it.
type Operator struct {
	Mnemonic string
	Operands []Value
}

// knownOperators is the closed set of PDF content-stream operators
// (ISO 32000-1 Table 51) recognized by a strict OperatorIterator. Anything
// outside this set is a malformed content stream.
var knownOperators = map[string]bool{
	"b": true, "B": true, "b*": true, "B*": true, "BDC": true, "BI": true,
	"BMC": true, "BT": true, "BX": true, "c": true, "cm": true, "cs": true,
	"CS": true, "d": true, "d0": true, "d1": true, "Do": true, "DP": true,
	"EI": true, "EMC": true, "ET": true, "EX": true, "f": true, "F": true,
	"f*": true, "g": true, "G": true, "gs": true, "h": true, "i": true,
	"ID": true, "j": true, "J": true, "k": true, "K": true, "l": true,
	"m": true, "M": true, "MP": true, "n": true, "q": true, "Q": true,
	"re": true, "rg": true, "RG": true, "ri": true, "s": true, "S": true,
	"sc": true, "SC": true, "scn": true, "SCN": true, "sh": true,
	"T*": true, "Tc": true, "Td": true, "TD": true, "Tf": true, "Tj": true,
	"TJ": true, "TL": true, "Tm": true, "Tr": true, "Ts": true, "Tw": true,
	"Tz": true, "v": true, "w": true, "W": true, "W*": true, "y": true,
	"'": true, "\"": true,
}

// ErrUnknownOperator reports a content-stream keyword outside the closed
// set of standard operators.
type ErrUnknownOperator struct {
	Mnemonic string
	Offset   int
}

func (e *ErrUnknownOperator) Error() string {
	return fmt.Sprintf("content stream: unknown operator %q at offset %d", e.Mnemonic, e.Offset)
}

// OperatorIterator lazily decodes a content stream's operators one at a
// time, without materializing the whole program as a slice.
type OperatorIterator struct {
	b      *buffer
	strict bool
}

// NewOperatorIterator returns an iterator over the decoded bytes of a
// single content stream.
func NewOperatorIterator(content []byte) *OperatorIterator {
	b := newBuffer(bytes.NewReader(content), 0)
	b.allowEOF = true
	return &OperatorIterator{b: b}
}

// NewStrictOperatorIterator behaves like NewOperatorIterator, but Next
// returns a fatal *ErrUnknownOperator instead of silently passing through
// an operator mnemonic outside ISO 32000-1's closed set. This is the mode
// used by the text-object pipeline, which must not misinterpret a
// malformed stream as an empty one.
func NewStrictOperatorIterator(content []byte) *OperatorIterator {
	it := NewOperatorIterator(content)
	it.strict = true
	return it
}

// Next decodes and returns the next operator, or io.EOF once the content
// stream is exhausted.
func (it *OperatorIterator) Next() (op Operator, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	var stk Stack
	for {
		if !it.b.more() {
			return Operator{}, io.EOF
		}
		offset := it.b.pos
		tok := it.b.readToken()
		kw, isKeyword := tok.(keyword)
		if !isKeyword {
			stk.Push(Value{nil, objptr{}, tok})
			continue
		}
		word := string(kw)
		if word == "BI" {
			it.skipInlineImage()
			continue
		}
		if it.strict && !knownOperators[word] {
			return Operator{}, &ErrUnknownOperator{Mnemonic: word, Offset: offset}
		}
		n := stk.Len()
		operands := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			operands[i] = stk.Pop()
		}
		return Operator{Mnemonic: word, Operands: operands}, nil
	}
}

// skipInlineImage discards an inline image's dictionary and binary payload
// (BI ... ID ... EI); decoding the image itself is out of scope.
func (it *OperatorIterator) skipInlineImage() {
	for it.b.more() {
		tok := it.b.readToken()
		if tok == keyword("ID") {
			break
		}
	}
	// A single whitespace byte separates ID from the raw image data.
	it.b.discard(1)
	const kw = "EI"
	matched := 0
	for {
		c, err := it.b.readRawByte()
		if err != nil {
			return
		}
		if c == kw[matched] {
			matched++
			if matched == len(kw) {
				return
			}
			continue
		}
		matched = 0
		if c == kw[0] {
			matched = 1
		}
	}
}

// Interpret walks a content (or PostScript CMap) stream, invoking do once
// per operator with the accumulated operand stack. It is the permissive,
// callback-shaped counterpart to OperatorIterator used throughout the
// page-content convenience methods: every keyword it encounters is handed
// to do, which is free to ignore the ones it does not understand.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	rd := strm.Reader()
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		logger.Error(err.Error())
		panic(err)
	}
	it := NewOperatorIterator(data)
	for {
		op, err := it.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			logger.Error(err.Error())
			panic(err)
		}
		var stk Stack
		for _, operand := range op.Operands {
			stk.Push(operand)
		}
		do(&stk, op.Mnemonic)
	}
}
