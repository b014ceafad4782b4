// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextObjectIteratorBasicPositions(t *testing.T) {
	content := []byte("BT /F1 12 Tf 100 200 Td (Hi) Tj ET")
	it := NewTextObjectIterator(content, nil)

	ev, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16('H'), ev.Code)
	assert.InDelta(t, 100, ev.Position[0], 0.001)
	assert.InDelta(t, 200, ev.Position[1], 0.001)
	assert.Equal(t, Key("F1"), ev.Font)
	assert.Equal(t, 12.0, ev.FontSize)

	ev, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, uint16('i'), ev.Code)
	assert.InDelta(t, 100, ev.Position[0], 0.001)

	_, err = it.Next()
	assert.Equal(t, io.EOF, err)
}

func TestTextObjectIteratorBTOnlyResetsMatrices(t *testing.T) {
	content := []byte("BT /F1 10 Tf 5 Tc ET BT (A) Tj ET")
	it := NewTextObjectIterator(content, nil)
	_, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 5.0, it.State().CharSpace, "Tc must survive the next BT's matrix reset")
}

func TestTextObjectIteratorUnmatchedET(t *testing.T) {
	it := NewTextObjectIterator([]byte("ET"), nil)
	_, err := it.Next()
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, ErrUnterminatedTextObject, pe.Kind)
}

type fixedWidth struct{ w float64 }

func (f fixedWidth) GlyphWidth(Key, uint16) float64 { return f.w }

func TestTextObjectIteratorAdvancesByWidth(t *testing.T) {
	content := []byte("BT /F1 10 Tf (AB) Tj ET")
	it := NewTextObjectIterator(content, fixedWidth{w: 500})

	ev1, err := it.Next()
	require.NoError(t, err)
	ev2, err := it.Next()
	require.NoError(t, err)
	assert.Greater(t, ev2.Position[0], ev1.Position[0])
}

func TestTextObjectIteratorTJAdjustment(t *testing.T) {
	content := []byte("BT /F1 10 Tf [(A) -250 (B)] TJ ET")
	it := NewTextObjectIterator(content, nil)

	ev1, err := it.Next()
	require.NoError(t, err)
	ev2, err := it.Next()
	require.NoError(t, err)
	assert.Greater(t, ev2.Position[0], ev1.Position[0], "a negative TJ adjustment moves the next glyph rightward")
}
