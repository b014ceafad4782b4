// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import "bytes"

// NewReaderFromBytes opens a PDF already fully loaded into memory. It is
// a thin convenience over NewReader for callers that already hold the
// document as a []byte (downloaded, memory-mapped, or otherwise not
// backed by an *os.File) and would otherwise have to wrap it in a
// bytes.Reader themselves.
func NewReaderFromBytes(buf []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(buf), int64(len(buf)))
}
