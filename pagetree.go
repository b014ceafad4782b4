// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

import (
	"bytes"
	"io"
)

// inheritedAttrs holds the page attributes that §7.6.2 of the PDF
// specification allows a page to omit and inherit from an ancestor
// /Pages node: Resources, MediaBox, CropBox and Rotate.
type inheritedAttrs struct {
	Resources *RawDict
	MediaBox  []float64
	CropBox   []float64
	Rotate    int64
}

func (a inheritedAttrs) mergedWith(child inheritedAttrs) inheritedAttrs {
	out := a
	if child.Resources != nil {
		out.Resources = child.Resources
	}
	if child.MediaBox != nil {
		out.MediaBox = child.MediaBox
	}
	if child.CropBox != nil {
		out.CropBox = child.CropBox
	}
	if child.Rotate != 0 {
		out.Rotate = child.Rotate
	}
	return out
}

func extractFloatArray(c *cursor) ([]float64, error) {
	arr, err := extractArray(c)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(arr))
	for _, v := range arr {
		switch n := v.(type) {
		case int64:
			out = append(out, float64(n))
		case float64:
			out = append(out, n)
		default:
			return nil, newParseError(ErrMalformedSyntax, nil, 0, false, "expected numeric array element")
		}
	}
	return out, nil
}

func popInherited(d *RawDict) (inheritedAttrs, error) {
	var a inheritedAttrs
	if res, ok, err := Option(d, Key("Resources"), extractRawDict); err != nil {
		return a, err
	} else if ok {
		a.Resources = res
	}
	if mb, ok, err := Option(d, Key("MediaBox"), extractFloatArray); err != nil {
		return a, err
	} else if ok {
		a.MediaBox = mb
	}
	if cb, ok, err := Option(d, Key("CropBox"), extractFloatArray); err != nil {
		return a, err
	} else if ok {
		a.CropBox = cb
	}
	if rot, ok, err := Option(d, Key("Rotate"), extractNumber); err != nil {
		return a, err
	} else if ok {
		if n, ok := rot.(int64); ok {
			a.Rotate = n
		}
	}
	return a, nil
}

// PageNode is an intermediate /Pages node in the page tree.
type PageNode struct {
	Kids      []Reference
	Inherited inheritedAttrs
}

// FromRawDict implements FromRawDict for PageNode.
func (n *PageNode) FromRawDict(d *RawDict) error {
	kids, err := PopAndExtract(d, Key("Kids"), func(c *cursor) ([]Reference, error) {
		arr, err := extractArray(c)
		if err != nil {
			return nil, err
		}
		out := make([]Reference, 0, len(arr))
		for _, v := range arr {
			ref, ok := v.(Reference)
			if !ok {
				return nil, newParseError(ErrMalformedSyntax, nil, 0, false, "Kids element is not a reference")
			}
			out = append(out, ref)
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	n.Kids = kids
	inh, err := popInherited(d)
	if err != nil {
		return err
	}
	n.Inherited = inh
	return nil
}

// PageLeaf is a /Page leaf node: one renderable page.
type PageLeaf struct {
	Contents  []Reference
	Inherited inheritedAttrs
	Ref       Reference
}

// FromRawDict implements FromRawDict for PageLeaf.
func (n *PageLeaf) FromRawDict(d *RawDict) error {
	contents, err := MaybeArray(d, Key("Contents"), func(c *cursor) (Reference, error) {
		c.skipWhitespace()
		return extractReference(c)
	})
	if err != nil {
		return err
	}
	n.Contents = contents
	inh, err := popInherited(d)
	if err != nil {
		return err
	}
	n.Inherited = inh
	return nil
}

// ObjStmDict describes the header of an object stream (/Type /ObjStm):
// N compact objects beginning at byte offset First within the stream's
// decoded data, optionally extending another object stream.
type ObjStmDict struct {
	N       int64
	First   int64
	Extends *Reference
}

// FromRawDict implements FromRawDict for ObjStmDict.
func (o *ObjStmDict) FromRawDict(d *RawDict) error {
	n, err := PopAndExtract(d, Key("N"), extractNumber)
	if err != nil {
		return err
	}
	o.N = n.(int64)
	first, err := PopAndExtract(d, Key("First"), extractNumber)
	if err != nil {
		return err
	}
	o.First = first.(int64)
	if ext, ok, err := OptRef[ObjStmDict](d, Key("Extends")); err != nil {
		return err
	} else if ok {
		o.Extends = &ext.Reference
	}
	return nil
}

// fetchRawDict reads the dictionary (page-tree node, page, or object
// stream header) that ref points to, without decoding any key the
// caller never asks for. It supports both directly-offset objects and
// objects compacted into an /ObjStm via the containing xref's inStream
// flag.
func (r *Reader) fetchRawDict(ref Reference) (*RawDict, error) {
	if int(ref.Num) >= len(r.xref) {
		return nil, newParseError(ErrUnresolvedReference, nil, 0, true, "object %d %d not in cross-reference table", ref.Num, ref.Gen)
	}
	x := r.xref[ref.Num]
	if x.ptr != ref.asObjptr() {
		return nil, newParseError(ErrUnresolvedReference, nil, 0, true, "object %d %d not at expected generation", ref.Num, ref.Gen)
	}
	if x.inStream {
		return r.fetchRawDictFromObjStm(ref, x.stream)
	}
	return r.fetchRawDictAtOffset(x.offset)
}

const directObjectWindow = 1 << 16

func (r *Reader) fetchRawDictAtOffset(offset int64) (*RawDict, error) {
	window := directObjectWindow
	if max := r.end - offset; max < int64(window) {
		window = int(max)
	}
	if window <= 0 {
		return nil, newParseError(ErrMalformedSyntax, nil, 0, true, "object offset %d beyond end of file", offset)
	}
	buf := make([]byte, window)
	n, err := r.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, newParseError(ErrMalformedSyntax, nil, 0, true, "reading object at offset %d: %v", offset, err)
	}
	buf = buf[:n]
	c := newCursor(buf)
	c.skipWhitespace()
	if _, err := extractNumber(c); err != nil {
		return nil, err
	}
	c.skipWhitespace()
	if _, err := extractNumber(c); err != nil {
		return nil, err
	}
	c.skipWhitespace()
	if !c.consumeLiteral("obj") {
		return nil, c.fail(ErrMalformedSyntax, true, "expected 'obj' keyword")
	}
	c.skipWhitespace()
	return extractRawDict(c)
}

// fetchRawDictFromObjStm locates ref's compact representation inside an
// /ObjStm. The stream's own header dictionary (/N, /First, /Extends) is
// read with the same zero-copy cursor used everywhere else in this file
// — a stream object's dictionary ends cleanly at the matching ">>" well
// before its "stream" keyword and binary body, so fetchRawDict works on
// it unchanged. Only decompressing the body is delegated to the
// teacher's existing eager Value.Reader(), since the filter/DecodeParms
// machinery it wraps is not duplicated in this module.
func (r *Reader) fetchRawDictFromObjStm(ref Reference, stream objptr) (*RawDict, error) {
	for {
		hdrDict, err := r.fetchRawDict(stream.asReference())
		if err != nil {
			return nil, err
		}
		hdr, err := BuildFromRawDict[ObjStmDict](hdrDict)
		if err != nil {
			return nil, err
		}
		strm := r.resolve(objptr{}, stream)
		if strm.Kind() != Stream {
			return nil, newParseError(ErrUnresolvedReference, nil, 0, true, "object stream %v is not a stream", stream)
		}
		rc := strm.Reader()
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, newParseError(ErrDecompression, nil, 0, true, "decompressing object stream: %v", err)
		}
		c := newCursor(data)
		found := false
		var targetOffset int64
		for i := int64(0); i < hdr.N; i++ {
			c.skipWhitespace()
			idv, err := extractNumber(c)
			if err != nil {
				return nil, err
			}
			c.skipWhitespace()
			offv, err := extractNumber(c)
			if err != nil {
				return nil, err
			}
			if uint32(idv.(int64)) == ref.Num {
				targetOffset = offv.(int64)
				found = true
			}
		}
		if !found {
			if hdr.Extends == nil {
				return nil, newParseError(ErrUnresolvedReference, nil, 0, true, "object %d not found in object stream", ref.Num)
			}
			stream = hdr.Extends.asObjptr()
			continue
		}
		objStart := hdr.First + targetOffset
		if objStart < 0 || objStart > int64(len(data)) {
			return nil, newParseError(ErrMalformedSyntax, nil, 0, true, "compact object offset out of range")
		}
		oc := newCursor(data[objStart:])
		oc.skipWhitespace()
		return extractRawDict(oc)
	}
}

// visitState distinguishes pages already fully walked from those
// currently on the DFS stack, so a cyclic /Parent or /Kids loop is
// rejected instead of recursing forever.
type visitState int

const (
	visitUnseen visitState = iota
	visitActive
	visitDone
)

// WalkPageTree performs a depth-first, cycle-safe walk of the document's
// page tree starting at the catalog's /Pages entry, returning every leaf
// in document order.
func (r *Reader) WalkPageTree() ([]*PageLeaf, error) {
	rootRef, ok := r.trailer[name("Root")].(objptr)
	if !ok {
		return nil, newParseError(ErrMissingRequiredKey, nil, 0, true, "trailer has no /Root")
	}
	catalog, err := r.fetchRawDict(rootRef.asReference())
	if err != nil {
		return nil, err
	}
	pagesRef, ok, err := OptRef[PageNode](catalog, Key("Pages"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newParseError(ErrMissingRequiredKey, nil, 0, true, "catalog has no /Pages")
	}

	visited := make(map[Reference]visitState)
	var leaves []*PageLeaf
	var walk func(ref Reference, parent inheritedAttrs) error
	walk = func(ref Reference, parent inheritedAttrs) error {
		switch visited[ref] {
		case visitActive:
			return newParseError(ErrMalformedSyntax, nil, 0, true, "cycle detected in page tree at object %d", ref.Num)
		case visitDone:
			return nil
		}
		visited[ref] = visitActive
		defer func() { visited[ref] = visitDone }()

		d, err := r.fetchRawDict(ref)
		if err != nil {
			return err
		}
		typ, hasType, err := Option(d, Key("Type"), extractName)
		if err != nil {
			return err
		}
		if hasType && typ == "Page" {
			leaf, err := BuildFromRawDict[PageLeaf](d)
			if err != nil {
				return err
			}
			leaf.Inherited = parent.mergedWith(leaf.Inherited)
			leaf.Ref = ref
			leaves = append(leaves, &leaf)
			return nil
		}
		node, err := BuildFromRawDict[PageNode](d)
		if err != nil {
			return err
		}
		merged := parent.mergedWith(node.Inherited)
		for _, kid := range node.Kids {
			if err := walk(kid, merged); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(pagesRef.Reference, inheritedAttrs{}); err != nil {
		return nil, err
	}
	return leaves, nil
}

// BuildContent returns the page's fully decoded, concatenated content
// stream, joining multiple /Contents entries with a newline as required
// when an array of streams stands in for one logical content stream.
func (p *PageLeaf) BuildContent(r *Reader) ([]byte, error) {
	var buf bytes.Buffer
	for i, ref := range p.Contents {
		v := r.resolve(objptr{}, ref.asObjptr())
		if v.Kind() != Stream {
			return nil, newParseError(ErrMalformedSyntax, nil, 0, true, "content entry %d is not a stream", i)
		}
		rc := v.Reader()
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, newParseError(ErrDecompression, nil, 0, true, "decompressing content stream: %v", err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
