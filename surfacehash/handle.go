// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// HandleKind tags a Handle with the metadata table (or heap) it addresses.
type HandleKind uint8

// Table and heap selectors a Handle can carry. These mirror the ECMA-335
// tables named in the data model, plus two heap-addressed pseudo-kinds
// (String, Blob) so a single Handle type threads through the cache.
const (
	KindNone HandleKind = iota
	KindString
	KindBlob
	KindGUID
	KindAssemblyDefinition
	KindAssemblyReference
	KindModuleDefinition
	KindModuleReference
	KindTypeDefinition
	KindTypeReference
	KindTypeSpecification
	KindMethodDefinition
	KindMemberReference
	KindFieldDefinition
	KindPropertyDefinition
	KindEventDefinition
	KindParameter
	KindGenericParameter
	KindGenericParameterConstraint
	KindInterfaceImplementation
	KindCustomAttribute
	KindConstant
	KindManifestResource
	KindExportedType
)

// Handle is an opaque reference into one metadata table (Row is the 1-based
// row number from the CLI metadata spec) or, for KindString/KindBlob/
// KindGUID, an offset into the corresponding heap. The zero Handle (KindNone,
// Row 0) denotes "absent" throughout this package.
type Handle struct {
	Kind HandleKind
	Row  uint32
}

// IsNil reports whether h denotes "absent" (the null handle).
func (h Handle) IsNil() bool {
	return h.Kind == KindNone && h.Row == 0
}

// StringHandle builds a Handle into the #Strings heap at the given offset.
func StringHandle(offset uint32) Handle {
	return Handle{Kind: KindString, Row: offset}
}

// BlobHandle builds a Handle into the #Blob heap at the given offset.
func BlobHandle(offset uint32) Handle {
	return Handle{Kind: KindBlob, Row: offset}
}
