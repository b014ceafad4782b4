// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// winAnsiEncoding, macRomanEncoding and pdfDocEncoding are the three
// single-byte encodings a simple font's /Encoding entry can name. They are
// built once from golang.org/x/text's charmap tables rather than hand-kept
// 256-entry arrays: WinAnsiEncoding is byte-for-byte Windows-1252,
// MacRomanEncoding is byte-for-byte the classic Macintosh charmap, and
// PDFDocEncoding is approximated with ISO-8859-1 (see the design notes for
// the handful of code points where the two part ways).
var (
	winAnsiEncoding  [256]rune
	macRomanEncoding [256]rune
	pdfDocEncoding   [256]rune
)

func init() {
	fillTable(&winAnsiEncoding, charmap.Windows1252)
	fillTable(&macRomanEncoding, charmap.Macintosh)
	fillTable(&pdfDocEncoding, charmap.ISO8859_1)
}

func fillTable(table *[256]rune, cm *charmap.Charmap) {
	for i := 0; i < 256; i++ {
		r := cm.DecodeByte(byte(i))
		if r == utf8.RuneError {
			r = rune(i)
		}
		table[i] = r
	}
}

// isUTF16 reports whether a PDF text string carries the big-endian UTF-16
// byte-order mark that distinguishes it from a PDFDocEncoded string and
// has an even length, as UTF-16 data must.
func isUTF16(s string) bool {
	return len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF && len(s)%2 == 0
}

// utf16Decode decodes big-endian UTF-16 bytes (as used by PDF text
// strings and ToUnicode CMap replacement strings) to a UTF-8 string.
func utf16Decode(s string) string {
	out, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// isPDFDocEncoded reports whether s should be read as PDFDocEncoding, i.e.
// it is a PDF text string without the UTF-16 byte-order mark.
func isPDFDocEncoded(s string) bool {
	return !isUTF16(s)
}

// pdfDocDecode decodes a PDFDocEncoded byte string to UTF-8.
func pdfDocDecode(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = pdfDocEncoding[s[i]]
	}
	return string(r)
}

// DecodeUTF8OrPreserve decodes s as UTF-8 when it already is valid UTF-8;
// otherwise it preserves each raw byte as its own rune rather than
// dropping or replacing it, so an unmapped CMap code never loses data.
func DecodeUTF8OrPreserve(s string) []rune {
	if utf8.ValidString(s) {
		return []rune(s)
	}
	out := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = rune(s[i])
	}
	return out
}
