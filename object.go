// Copyright © 2026 The Livre Authors. All rights reserved.
// SPDX-License-Identifier: BSD-3-Clause

package livre

// The low-level object model used while parsing the document skeleton
// (header, xref, trailer, indirect objects). These types mirror the small,
// closed grammar of PDF's COS layer: names, dictionaries, arrays, indirect
// references, indirect object definitions, and streams.

// name is a PDF name object, such as /Type, without the leading slash.
type name string

// keyword is a bare PDF keyword token: xref, trailer, obj, endobj, stream,
// endstream, true, false, null, R, and the like.
type keyword string

// dict is a PDF dictionary: an unordered collection of name-value pairs.
type dict map[name]interface{}

// array is a PDF array: an ordered list of values.
type array []interface{}

// objptr identifies an indirect object by object number and generation.
type objptr struct {
	id  uint32
	gen uint16
}

// objdef pairs an indirect object's identity with its decoded value.
type objdef struct {
	ptr objptr
	obj interface{}
}

// stream is a PDF stream object: a header dictionary plus the file offset
// at which the stream's raw (still-filtered) bytes begin.
type stream struct {
	hdr    dict
	ptr    objptr
	offset int64
}

// object is any of the above, or nil, bool, int64, float64, name, string,
// dict, array, objptr, objdef, stream. It exists purely as documentation;
// Go has no closed sum type, so it is declared as an alias for interface{}.
type object = interface{}

// Reference is the exported, document-independent identity of an indirect
// object: the pair an "N G R" token spells out on the wire.
type Reference struct {
	Num uint32
	Gen uint16
}

// TypedReference pins a Reference to the Go type its target is expected to
// build into, so call sites document what they expect without the builder
// actually carrying any extra runtime payload — the type parameter is
// purely a compile-time tag.
type TypedReference[T any] struct {
	Reference
}

func (p objptr) asReference() Reference {
	return Reference{Num: p.id, Gen: p.gen}
}

func (r Reference) asObjptr() objptr {
	return objptr{id: r.Num, gen: r.Gen}
}
