// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import "fmt"

// ErrorKind classifies a parse failure produced by the zero-copy extractor
// framework (cursor.go, primitives.go, rawdict.go) and the page-tree and
// text-object pipelines built on it.
type ErrorKind int

const (
	// ErrMalformedSyntax covers a byte sequence that does not match the
	// grammar at the cursor's current position.
	ErrMalformedSyntax ErrorKind = iota
	// ErrMissingRequiredKey covers a dictionary missing a key its
	// FromRawDict implementation requires.
	ErrMissingRequiredKey
	// ErrUnresolvedReference covers a reference that does not resolve to
	// any entry in the cross-reference map.
	ErrUnresolvedReference
	// ErrUnsupportedFilterKind covers a stream filter this module does not
	// implement.
	ErrUnsupportedFilterKind
	// ErrDecompression covers a filter that ran but failed partway through.
	ErrDecompression
	// ErrOperatorDomain covers a content operator applied to operands of
	// the wrong arity or type.
	ErrOperatorDomain
	// ErrUnterminatedTextObject covers a BT with no matching ET before the
	// content stream ends, a BT nested inside an open text object, and an
	// ET with no matching BT.
	ErrUnterminatedTextObject
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedSyntax:
		return "malformed syntax"
	case ErrMissingRequiredKey:
		return "missing required key"
	case ErrUnresolvedReference:
		return "unresolved reference"
	case ErrUnsupportedFilterKind:
		return "unsupported filter"
	case ErrDecompression:
		return "decompression error"
	case ErrOperatorDomain:
		return "operator domain error"
	case ErrUnterminatedTextObject:
		return "unterminated text object"
	default:
		return "unknown error"
	}
}

// contextWindow bounds how much of the offending input a *ParseError quotes.
const contextWindow = 500

// ParseError is the concrete error type produced by the extractor
// framework. Fatal distinguishes a failure a combinator may recover from
// by trying an alternative (Fatal == false) from one that has already
// committed side effects or consumed unrecoverable input (Fatal == true).
type ParseError struct {
	Kind    ErrorKind
	Offset  int
	Context string
	Message string
	Fatal   bool
}

func (e *ParseError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s at offset %d: %s (near %q)", e.Kind, e.Offset, e.Message, e.Context)
}

// newParseError builds a ParseError quoting up to contextWindow bytes
// starting at offset from buf, for error messages a human can act on.
func newParseError(kind ErrorKind, buf []byte, offset int, fatal bool, format string, args ...interface{}) *ParseError {
	end := offset + contextWindow
	if end > len(buf) {
		end = len(buf)
	}
	start := offset
	if start < 0 {
		start = 0
	}
	ctx := ""
	if start <= end && start < len(buf) {
		ctx = string(buf[start:end])
	}
	return &ParseError{
		Kind:    kind,
		Offset:  offset,
		Context: ctx,
		Message: fmt.Sprintf(format, args...),
		Fatal:   fatal,
	}
}
