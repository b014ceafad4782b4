// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorIteratorBasic(t *testing.T) {
	it := NewOperatorIterator([]byte("1 0 0 1 50 700 cm /F1 12 Tf (Hello) Tj"))

	op, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "cm", op.Mnemonic)
	require.Len(t, op.Operands, 6)
	assert.Equal(t, int64(50), op.Operands[4].Int64())

	op, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, "Tf", op.Mnemonic)
	assert.Equal(t, "F1", op.Operands[0].Name())

	op, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, "Tj", op.Mnemonic)
	assert.Equal(t, "Hello", op.Operands[0].RawString())

	_, err = it.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOperatorIteratorSkipsInlineImage(t *testing.T) {
	it := NewOperatorIterator([]byte("q BI /W 1 /H 1 ID \x00\x00\x00 EI Q"))

	op, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "q", op.Mnemonic)

	op, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, "Q", op.Mnemonic)

	_, err = it.Next()
	assert.Equal(t, io.EOF, err)
}

func TestStrictOperatorIteratorRejectsUnknownMnemonic(t *testing.T) {
	it := NewStrictOperatorIterator([]byte("BOGUS"))
	_, err := it.Next()
	require.Error(t, err)
	var unknown *ErrUnknownOperator
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "BOGUS", unknown.Mnemonic)
}

func TestOperatorIteratorPermissiveAllowsUnknownMnemonic(t *testing.T) {
	it := NewOperatorIterator([]byte("BOGUS q"))
	op, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "BOGUS", op.Mnemonic)

	op, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, "q", op.Mnemonic)
}
