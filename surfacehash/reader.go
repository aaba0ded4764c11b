// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// AssemblyVersion is the four-part version recorded on an assembly or
// assembly-reference row.
type AssemblyVersion struct {
	Major, Minor, Build, Revision uint16
}

// TypeDefInfo is the projection of a TypeDef row (and its associated
// children) that the hasher needs. Extends is the coded TypeDefOrRef handle
// of the base type (nil Handle for System.Object and interfaces).
// Enclosing is the nil Handle for a top-level type.
type TypeDefInfo struct {
	Namespace, Name    Handle
	Attributes         uint32
	Extends            Handle
	Enclosing          Handle
	Fields             []Handle
	Methods            []Handle
	Properties         []Handle
	Events             []Handle
	InterfaceImpls     []Handle
	GenericParams      []Handle
	CustomAttributes   []Handle
}

// PropertyInfo is the projection of a Property row.
type PropertyInfo struct {
	Name             Handle
	CustomAttributes []Handle
}

// EventInfo is the projection of an Event row.
type EventInfo struct {
	Name             Handle
	CustomAttributes []Handle
}

// FieldInfo is the projection of a Field row.
type FieldInfo struct {
	Name             Handle
	Attributes       uint32
	Signature        Handle
	Constant         Handle // nil Handle if the field is not a literal
	CustomAttributes []Handle
}

// MethodInfo is the projection of a MethodDef row.
type MethodInfo struct {
	Name             Handle
	Attributes       uint32
	Signature        Handle
	GenericParams    []Handle
	Params           []Handle
	CustomAttributes []Handle
}

// ParamInfo is the projection of a Param row.
type ParamInfo struct {
	Name             Handle
	Attributes       uint32
	Sequence         uint16
	Constant         Handle
	CustomAttributes []Handle
}

// InterfaceImplInfo is the projection of an InterfaceImpl row.
type InterfaceImplInfo struct {
	Interface        Handle // coded TypeDefOrRef
	CustomAttributes []Handle
}

// GenericParamInfo is the projection of a GenericParam row. Index is the
// zero-based positional index (the Number column); Attributes carries the
// GenericParameterAttributes bits (variance, special constraints).
type GenericParamInfo struct {
	Index            uint16
	Attributes       uint16
	Constraints      []Handle // GenericParamConstraint handles
	CustomAttributes []Handle
}

// GenericParamConstraintInfo is the projection of a GenericParamConstraint row.
type GenericParamConstraintInfo struct {
	Constraint       Handle // coded TypeDefOrRef
	CustomAttributes []Handle
}

// TypeRefInfo is the projection of a TypeRef row. ResolutionScope is a
// coded handle tagged KindModuleDefinition, KindModuleReference,
// KindAssemblyReference, or KindTypeReference (for nesting); the nil Handle
// means "resolution scope absent", treated like the Module/ModuleRef case.
type TypeRefInfo struct {
	Namespace, Name Handle
	ResolutionScope Handle
}

// TypeSpecInfo is the projection of a TypeSpec row.
type TypeSpecInfo struct {
	Signature        Handle
	CustomAttributes []Handle
}

// MemberRefInfo is the projection of a MemberRef row. Parent is a coded
// MemberRefParent handle (TypeDef, TypeRef, ModuleRef, MethodDef, TypeSpec).
type MemberRefInfo struct {
	Name      Handle
	Signature Handle
	Parent    Handle
}

// AssemblyRefInfo is the projection of an AssemblyRef row.
type AssemblyRefInfo struct {
	Name, Culture    Handle
	PublicKeyOrToken Handle
	Version          AssemblyVersion
}

// ExportedTypeInfo is the projection of an ExportedType row. Implementation
// is a coded handle: KindAssemblyReference for types defined in another
// assembly, or KindExportedType for nested exported types (walk up to find
// the owning assembly). A File implementation (a type in another module of
// this assembly) is the nil Handle.
type ExportedTypeInfo struct {
	Namespace, Name  Handle
	Attributes       uint32
	Implementation   Handle
	CustomAttributes []Handle
}

// ManifestResourceInfo is the projection of a ManifestResource row.
// Implementation is the nil Handle when the resource's bytes live in the
// current module (addressed by Offset into the CLR header's Resources data
// directory); otherwise it names another File row and the resource is
// linked, not embedded.
type ManifestResourceInfo struct {
	Name             Handle
	Attributes       uint32
	Implementation   Handle
	Offset           uint32
	CustomAttributes []Handle
}

// CustomAttributeInfo is the projection of a CustomAttribute row. Ctor is a
// coded CustomAttributeType handle (MethodDef or MemberRef) naming the
// attribute constructor used; Value is the blob holding the fixed/named
// argument payload.
type CustomAttributeInfo struct {
	Parent Handle
	Ctor   Handle
	Value  Handle
}

// MetadataReader is the single collaborator surfacehash depends on: a
// typed view over the CLI metadata tables and heaps of one PE image.
// FromPE adapts a *pe.File to this interface; tests build a fake
// implementation by hand (see fixture_test.go) instead of parsing a real
// assembly.
type MetadataReader interface {
	// AssemblyName, AssemblyCulture and AssemblyPublicKey project the
	// single-row Assembly table. AssemblyCustomAttributes and
	// ModuleCustomAttributes return CustomAttribute handles whose Parent is
	// the Assembly or Module row respectively.
	AssemblyName() Handle
	AssemblyCulture() Handle
	AssemblyPublicKey() Handle
	AssemblyCustomAttributes() []Handle
	ModuleCustomAttributes() []Handle

	// TypeDefs returns every TypeDef row handle, in table order (the hasher
	// re-sorts their hashes before combining, per §4.1).
	TypeDefs() []Handle
	TypeDef(h Handle) TypeDefInfo

	Field(h Handle) FieldInfo
	Method(h Handle) MethodInfo
	Param(h Handle) ParamInfo
	Property(h Handle) PropertyInfo
	Event(h Handle) EventInfo
	InterfaceImpl(h Handle) InterfaceImplInfo
	GenericParam(h Handle) GenericParamInfo
	GenericParamConstraint(h Handle) GenericParamConstraintInfo

	TypeRef(h Handle) TypeRefInfo
	TypeSpec(h Handle) TypeSpecInfo
	MemberRef(h Handle) MemberRefInfo
	AssemblyRef(h Handle) AssemblyRefInfo

	ExportedTypes() []Handle
	ExportedType(h Handle) ExportedTypeInfo

	ManifestResources() []Handle
	ManifestResource(h Handle) ManifestResourceInfo
	// ResourceData returns the raw bytes of an embedded manifest resource
	// (Implementation is the nil Handle), resolved via the CLR header's
	// Resources data directory plus the row's Offset.
	ResourceData(h Handle) ([]byte, error)

	CustomAttribute(h Handle) CustomAttributeInfo

	// MethodSemanticsByAssociation returns, for a Property or Event handle,
	// the (semantics bits, method handle) pairs associated with it — the
	// MethodSemantics table's reverse index, keyed by Association. Bits use
	// the MethodSemanticsAttributes encoding (Setter=0x1, Getter=0x2,
	// Other=0x4, AddOn=0x8, RemoveOn=0x10, Fire=0x20).
	MethodSemanticsByAssociation(h Handle) []MethodSemanticsEntry

	// String and Blob resolve heap-addressed handles.
	String(h Handle) string
	Blob(h Handle) []byte
}

// MethodSemanticsEntry is one row of the MethodSemantics table, projected
// for a single Association (Property or Event) handle.
type MethodSemanticsEntry struct {
	Semantics uint16
	Method    Handle
	Name      Handle // not filled by FromPE; callers take the name from PropertyInfo/EventInfo
}

// MethodSemantics bit values, ECMA-335 §II.23.1.12.
const (
	MethodSemanticsSetter   uint16 = 0x1
	MethodSemanticsGetter   uint16 = 0x2
	MethodSemanticsOther    uint16 = 0x4
	MethodSemanticsAddOn    uint16 = 0x8
	MethodSemanticsRemoveOn uint16 = 0x10
	MethodSemanticsFire     uint16 = 0x20
)
