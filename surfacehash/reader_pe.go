// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import (
	pe "github.com/saferwall/dotnetsurface"
)

// peReader adapts a parsed *pe.File to MetadataReader. It is built once per
// file: the constructor walks the handful of tables whose rows aren't
// addressed directly by row number (TypeDef.FieldList/MethodList ranges,
// MethodDef.ParamList ranges, PropertyMap/EventMap ranges, NestedClass,
// Constant, CustomAttribute, MethodSemantics) and builds owner maps and
// indexes from them. Most MetadataReader methods below are a slice index
// plus a map lookup; TypeDef, Method and GenericParam scan the owner maps
// and child tables linearly to collect a row's children.
type peReader struct {
	f *pe.File

	typeDefs     []pe.TypeDefTableRow
	typeRefs     []pe.TypeRefTableRow
	typeSpecs    []pe.TypeSpecTableRow
	fields       []pe.FieldTableRow
	methods      []pe.MethodDefTableRow
	params       []pe.ParamTableRow
	interfaces   []pe.InterfaceImplTableRow
	memberRefs   []pe.MemberRefTableRow
	assemblies   []pe.AssemblyTableRow
	assemblyRefs []pe.AssemblyRefTableRow
	exportedTy   []pe.ExportedTypeTableRow
	manifestRes  []pe.ManifestResourceTableRow
	customAttrs  []pe.CustomAttributeTableRow
	constants    []pe.ConstantTableRow
	events       []pe.EventTableRow
	properties   []pe.PropertyTableRow
	eventMaps    []pe.EventMapTableRow
	propMaps     []pe.PropertyMapTableRow
	genParams    []pe.GenericParamTableRow
	genConstr    []pe.GenericParamConstraintTableRow
	nestedClass  []pe.NestedClassTableRow

	// enclosing[nestedRow] = enclosingRow, both 1-based TypeDef row numbers.
	enclosing map[uint32]uint32

	// fieldOwner/methodOwner/paramOwner map a 1-based child row to its
	// 1-based owning TypeDef/MethodDef row, derived from the contiguous
	// FieldList/MethodList/ParamList ranges.
	fieldOwner  map[uint32]uint32
	methodOwner map[uint32]uint32
	paramOwner  map[uint32]uint32

	// propertyOwner/eventOwner map a Property/Event row to its owning
	// TypeDef row, derived from PropertyMap/EventMap.
	propertyOwner map[uint32]uint32
	eventOwner    map[uint32]uint32

	// customAttrsByParent indexes the CustomAttribute table by decoded
	// HasCustomAttribute parent handle, in table order.
	customAttrsByParent map[Handle][]Handle

	// constantByParent indexes the Constant table by decoded HasConstant
	// parent handle. Field and Param constants are looked up; Property
	// constants are indexed too but never read by this package.
	constantByParent map[Handle]uint32

	// semanticsByAssociation indexes the MethodSemantics table by decoded
	// HasSemantics association handle (Property or Event).
	semanticsByAssociation map[Handle][]MethodSemanticsEntry
}

// FromPE builds a MetadataReader view over a parsed managed PE image. It
// returns an error if the image lacks a CLR header or the tables a managed
// assembly must carry (Module, TypeDef, Assembly).
func FromPE(f *pe.File) (MetadataReader, error) {
	if !f.HasCLR {
		return nil, badImage("image carries no CLR header")
	}

	r := &peReader{f: f}

	r.typeDefs = tableRows[pe.TypeDefTableRow](f, pe.TypeDef)
	r.typeRefs = tableRows[pe.TypeRefTableRow](f, pe.TypeRef)
	r.typeSpecs = tableRows[pe.TypeSpecTableRow](f, pe.TypeSpec)
	r.fields = tableRows[pe.FieldTableRow](f, pe.Field)
	r.methods = tableRows[pe.MethodDefTableRow](f, pe.MethodDef)
	r.params = tableRows[pe.ParamTableRow](f, pe.Param)
	r.interfaces = tableRows[pe.InterfaceImplTableRow](f, pe.InterfaceImpl)
	r.memberRefs = tableRows[pe.MemberRefTableRow](f, pe.MemberRef)
	r.assemblies = tableRows[pe.AssemblyTableRow](f, pe.Assembly)
	r.assemblyRefs = tableRows[pe.AssemblyRefTableRow](f, pe.AssemblyRef)
	r.exportedTy = tableRows[pe.ExportedTypeTableRow](f, pe.ExportedType)
	r.manifestRes = tableRows[pe.ManifestResourceTableRow](f, pe.ManifestResource)
	r.customAttrs = tableRows[pe.CustomAttributeTableRow](f, pe.CustomAttribute)
	r.constants = tableRows[pe.ConstantTableRow](f, pe.Constant)
	r.events = tableRows[pe.EventTableRow](f, pe.Event)
	r.properties = tableRows[pe.PropertyTableRow](f, pe.Property)
	r.eventMaps = tableRows[pe.EventMapTableRow](f, pe.EventMap)
	r.propMaps = tableRows[pe.PropertyMapTableRow](f, pe.PropertyMap)
	r.genParams = tableRows[pe.GenericParamTableRow](f, pe.GenericParam)
	r.genConstr = tableRows[pe.GenericParamConstraintTableRow](f, pe.GenericParamConstraint)
	r.nestedClass = tableRows[pe.NestedClassTableRow](f, pe.NestedClass)

	if len(r.typeDefs) == 0 || len(r.assemblies) == 0 {
		return nil, badImage("image carries no TypeDef or Assembly row")
	}

	r.buildOwnerRanges()
	r.buildEnclosing()
	r.buildCustomAttributeIndex()
	r.buildConstantIndex()
	r.buildSemanticsIndex()

	return r, nil
}

// tableRows projects table.Content, returning nil for an absent table (a
// table with no rows in the image, not present in MetadataTables at all).
func tableRows[T any](f *pe.File, tableIdx int) []T {
	table, ok := f.CLR.MetadataTables[tableIdx]
	if !ok || table.Content == nil {
		return nil
	}
	rows, _ := table.Content.([]T)
	return rows
}

// buildOwnerRanges derives, from the contiguous FieldList/MethodList/
// ParamList boundaries, a direct row->owner map for Field, MethodDef and
// Param rows. The boundary of the last owning row runs to the end of the
// child table.
func (r *peReader) buildOwnerRanges() {
	r.fieldOwner = make(map[uint32]uint32, len(r.fields))
	r.methodOwner = make(map[uint32]uint32, len(r.methods))
	r.paramOwner = make(map[uint32]uint32, len(r.params))

	for i, td := range r.typeDefs {
		typeRow := uint32(i + 1)
		start := td.FieldList
		end := uint32(len(r.fields)) + 1
		if i+1 < len(r.typeDefs) {
			end = r.typeDefs[i+1].FieldList
		}
		for row := start; row < end && row >= 1; row++ {
			r.fieldOwner[row] = typeRow
		}

		start = td.MethodList
		end = uint32(len(r.methods)) + 1
		if i+1 < len(r.typeDefs) {
			end = r.typeDefs[i+1].MethodList
		}
		for row := start; row < end && row >= 1; row++ {
			r.methodOwner[row] = typeRow
		}
	}

	for i, md := range r.methods {
		methodRow := uint32(i + 1)
		start := md.ParamList
		end := uint32(len(r.params)) + 1
		if i+1 < len(r.methods) {
			end = r.methods[i+1].ParamList
		}
		for row := start; row < end && row >= 1; row++ {
			r.paramOwner[row] = methodRow
		}
	}

	r.propertyOwner = make(map[uint32]uint32, len(r.properties))
	for i, pm := range r.propMaps {
		start := pm.PropertyList
		end := uint32(len(r.properties)) + 1
		if i+1 < len(r.propMaps) {
			end = r.propMaps[i+1].PropertyList
		}
		for row := start; row < end && row >= 1; row++ {
			r.propertyOwner[row] = pm.Parent
		}
	}

	r.eventOwner = make(map[uint32]uint32, len(r.events))
	for i, em := range r.eventMaps {
		start := em.EventList
		end := uint32(len(r.events)) + 1
		if i+1 < len(r.eventMaps) {
			end = r.eventMaps[i+1].EventList
		}
		for row := start; row < end && row >= 1; row++ {
			r.eventOwner[row] = em.Parent
		}
	}
}

func (r *peReader) buildEnclosing() {
	r.enclosing = make(map[uint32]uint32, len(r.nestedClass))
	for _, nc := range r.nestedClass {
		r.enclosing[nc.NestedClass] = nc.EnclosingClass
	}
}

func (r *peReader) buildCustomAttributeIndex() {
	r.customAttrsByParent = make(map[Handle][]Handle, len(r.customAttrs))
	for i, ca := range r.customAttrs {
		parent := decodeCoded(idxHasCustomAttributesTags, ca.Parent)
		h := Handle{Kind: KindCustomAttribute, Row: uint32(i + 1)}
		r.customAttrsByParent[parent] = append(r.customAttrsByParent[parent], h)
	}
}

func (r *peReader) buildConstantIndex() {
	r.constantByParent = make(map[Handle]uint32, len(r.constants))
	for i, c := range r.constants {
		parent := decodeCoded(idxHasConstantTags, c.Parent)
		r.constantByParent[parent] = uint32(i + 1)
	}
}

func (r *peReader) buildSemanticsIndex() {
	r.semanticsByAssociation = make(map[Handle][]MethodSemanticsEntry)
	table := tableRows[pe.MethodSemanticsTableRow](r.f, pe.MethodSemantics)
	for _, ms := range table {
		assoc := decodeCoded(idxHasSemanticsTags, ms.Association)
		r.semanticsByAssociation[assoc] = append(r.semanticsByAssociation[assoc], MethodSemanticsEntry{
			Semantics: ms.Semantics,
			Method:    Handle{Kind: KindMethodDefinition, Row: ms.Method},
		})
	}
}

// --- coded-index decoding -------------------------------------------------

// codedTagScheme captures one ECMA-335 §II.24.2.6 coded-index encoding:
// tagbits low bits of the raw value select a table via kinds, keyed by the
// literal tag value the spec assigns that table (most schemes number tags
// sequentially from 0, but CustomAttributeType is the spec's one exception,
// reserving tags 2 and 3 rather than 0 and 1).
type codedTagScheme struct {
	tagbits uint
	kinds   map[uint32]HandleKind
}

var (
	idxTypeDefOrRefTags = codedTagScheme{tagbits: 2, kinds: map[uint32]HandleKind{
		0: KindTypeDefinition, 1: KindTypeReference, 2: KindTypeSpecification,
	}}
	idxResolutionScopeTags = codedTagScheme{tagbits: 2, kinds: map[uint32]HandleKind{
		0: KindModuleDefinition, 1: KindModuleReference, 2: KindAssemblyReference, 3: KindTypeReference,
	}}
	idxMemberRefParentTags = codedTagScheme{tagbits: 3, kinds: map[uint32]HandleKind{
		0: KindTypeDefinition, 1: KindTypeReference, 2: KindModuleReference, 3: KindMethodDefinition, 4: KindTypeSpecification,
	}}
	idxHasConstantTags = codedTagScheme{tagbits: 2, kinds: map[uint32]HandleKind{
		0: KindFieldDefinition, 1: KindParameter, 2: KindPropertyDefinition,
	}}
	// HasCustomAttribute, §II.24.2.6: tags 8 (Permission/DeclSecurity), 11
	// (StandAloneSig), 16 (File), 19-21 (GenericParam, GenericParamConstraint,
	// MethodSpec) name tables this package never looks up custom attributes
	// on; they're simply absent from kinds and decodeCoded returns the nil
	// Handle for them.
	idxHasCustomAttributesTags = codedTagScheme{tagbits: 5, kinds: map[uint32]HandleKind{
		0: KindMethodDefinition, 1: KindFieldDefinition, 2: KindTypeReference, 3: KindTypeDefinition,
		4: KindParameter, 5: KindInterfaceImplementation, 6: KindMemberReference, 7: KindModuleDefinition,
		9: KindPropertyDefinition, 10: KindEventDefinition, 12: KindModuleReference, 13: KindTypeSpecification,
		14: KindAssemblyDefinition, 15: KindAssemblyReference, 17: KindExportedType, 18: KindManifestResource,
	}}
	// CustomAttributeType, §II.24.2.6: the spec reserves tags 2 and 3 for
	// MethodDef/MemberRef specifically, leaving 0, 1 and 4-7 unused.
	idxCustomAttributeTypeTags = codedTagScheme{tagbits: 3, kinds: map[uint32]HandleKind{
		2: KindMethodDefinition, 3: KindMemberReference,
	}}
	idxHasSemanticsTags = codedTagScheme{tagbits: 1, kinds: map[uint32]HandleKind{
		0: KindEventDefinition, 1: KindPropertyDefinition,
	}}
	// Implementation, §II.24.2.6: tag 0 is File, which ManifestResource/
	// ExportedType rows needing a linked (non-embedded) resolution target
	// use; this package never follows a File row, so tag 0 maps to the nil
	// Handle deliberately.
	idxImplementationTags = codedTagScheme{tagbits: 2, kinds: map[uint32]HandleKind{
		1: KindAssemblyReference, 2: KindExportedType,
	}}
	idxTypeOrMethodDefTags = codedTagScheme{tagbits: 1, kinds: map[uint32]HandleKind{
		0: KindTypeDefinition, 1: KindMethodDefinition,
	}}
)

// decodeCoded splits a raw coded-index value into its tag and row, and maps
// the tag to a Handle kind via scheme. Row 0, or a tag scheme.kinds doesn't
// cover, yields the nil Handle, matching "index absent" throughout the CLI
// metadata tables.
func decodeCoded(scheme codedTagScheme, raw uint32) Handle {
	mask := uint32(1)<<scheme.tagbits - 1
	tag := raw & mask
	row := raw >> scheme.tagbits
	kind, ok := scheme.kinds[tag]
	if !ok || row == 0 {
		return Handle{}
	}
	return Handle{Kind: kind, Row: row}
}

// --- MetadataReader implementation ---------------------------------------

func (r *peReader) AssemblyName() Handle {
	return StringHandle(r.assemblies[0].Name)
}

func (r *peReader) AssemblyCulture() Handle {
	return StringHandle(r.assemblies[0].Culture)
}

func (r *peReader) AssemblyPublicKey() Handle {
	return BlobHandle(r.assemblies[0].PublicKey)
}

func (r *peReader) AssemblyCustomAttributes() []Handle {
	return r.customAttrsByParent[Handle{Kind: KindAssemblyDefinition, Row: 1}]
}

func (r *peReader) ModuleCustomAttributes() []Handle {
	return r.customAttrsByParent[Handle{Kind: KindModuleDefinition, Row: 1}]
}

func (r *peReader) TypeDefs() []Handle {
	out := make([]Handle, len(r.typeDefs))
	for i := range r.typeDefs {
		out[i] = Handle{Kind: KindTypeDefinition, Row: uint32(i + 1)}
	}
	return out
}

func (r *peReader) customAttrsFor(kind HandleKind, row uint32) []Handle {
	return r.customAttrsByParent[Handle{Kind: kind, Row: row}]
}

func (r *peReader) TypeDef(h Handle) TypeDefInfo {
	row := r.typeDefs[h.Row-1]

	var fields, methods, properties, events, ifaces, genParams []Handle
	for childRow, owner := range r.fieldOwner {
		if owner == h.Row {
			fields = append(fields, Handle{Kind: KindFieldDefinition, Row: childRow})
		}
	}
	for childRow, owner := range r.methodOwner {
		if owner == h.Row {
			methods = append(methods, Handle{Kind: KindMethodDefinition, Row: childRow})
		}
	}
	for childRow, owner := range r.propertyOwner {
		if owner == h.Row {
			properties = append(properties, Handle{Kind: KindPropertyDefinition, Row: childRow})
		}
	}
	for childRow, owner := range r.eventOwner {
		if owner == h.Row {
			events = append(events, Handle{Kind: KindEventDefinition, Row: childRow})
		}
	}
	for i, ii := range r.interfaces {
		if ii.Class == h.Row {
			ifaces = append(ifaces, Handle{Kind: KindInterfaceImplementation, Row: uint32(i + 1)})
		}
	}
	for i, gp := range r.genParams {
		owner := decodeCoded(idxTypeOrMethodDefTags, gp.Owner)
		if owner.Kind == KindTypeDefinition && owner.Row == h.Row {
			genParams = append(genParams, Handle{Kind: KindGenericParameter, Row: uint32(i + 1)})
		}
	}

	sortHandles(fields)
	sortHandles(methods)
	sortHandles(properties)
	sortHandles(events)

	enclosing := Handle{}
	if parent, ok := r.enclosing[h.Row]; ok {
		enclosing = Handle{Kind: KindTypeDefinition, Row: parent}
	}

	return TypeDefInfo{
		Namespace:        StringHandle(row.TypeNamespace),
		Name:             StringHandle(row.TypeName),
		Attributes:       row.Flags,
		Extends:          decodeCoded(idxTypeDefOrRefTags, row.Extends),
		Enclosing:        enclosing,
		Fields:           fields,
		Methods:          methods,
		Properties:       properties,
		Events:           events,
		InterfaceImpls:   ifaces,
		GenericParams:    genParams,
		CustomAttributes: r.customAttrsFor(KindTypeDefinition, h.Row),
	}
}

func (r *peReader) Field(h Handle) FieldInfo {
	row := r.fields[h.Row-1]
	constant := Handle{}
	if cr, ok := r.constantByParent[Handle{Kind: KindFieldDefinition, Row: h.Row}]; ok {
		constant = BlobHandle(r.constants[cr-1].Value)
	}
	return FieldInfo{
		Name:             StringHandle(row.Name),
		Attributes:       uint32(row.Flags),
		Signature:        BlobHandle(row.Signature),
		Constant:         constant,
		CustomAttributes: r.customAttrsFor(KindFieldDefinition, h.Row),
	}
}

func (r *peReader) Method(h Handle) MethodInfo {
	row := r.methods[h.Row-1]

	var params, genParams []Handle
	for childRow, owner := range r.paramOwner {
		if owner == h.Row {
			params = append(params, Handle{Kind: KindParameter, Row: childRow})
		}
	}
	sortHandles(params)

	for i, gp := range r.genParams {
		owner := decodeCoded(idxTypeOrMethodDefTags, gp.Owner)
		if owner.Kind == KindMethodDefinition && owner.Row == h.Row {
			genParams = append(genParams, Handle{Kind: KindGenericParameter, Row: uint32(i + 1)})
		}
	}

	return MethodInfo{
		Name:             StringHandle(row.Name),
		Attributes:       uint32(row.Flags),
		Signature:        BlobHandle(row.Signature),
		GenericParams:    genParams,
		Params:           params,
		CustomAttributes: r.customAttrsFor(KindMethodDefinition, h.Row),
	}
}

func (r *peReader) Param(h Handle) ParamInfo {
	row := r.params[h.Row-1]
	constant := Handle{}
	if cr, ok := r.constantByParent[Handle{Kind: KindParameter, Row: h.Row}]; ok {
		constant = BlobHandle(r.constants[cr-1].Value)
	}
	return ParamInfo{
		Name:             StringHandle(row.Name),
		Attributes:       uint32(row.Flags),
		Sequence:         row.Sequence,
		Constant:         constant,
		CustomAttributes: r.customAttrsFor(KindParameter, h.Row),
	}
}

func (r *peReader) Property(h Handle) PropertyInfo {
	row := r.properties[h.Row-1]
	return PropertyInfo{
		Name:             StringHandle(row.Name),
		CustomAttributes: r.customAttrsFor(KindPropertyDefinition, h.Row),
	}
}

func (r *peReader) Event(h Handle) EventInfo {
	row := r.events[h.Row-1]
	return EventInfo{
		Name:             StringHandle(row.Name),
		CustomAttributes: r.customAttrsFor(KindEventDefinition, h.Row),
	}
}

func (r *peReader) InterfaceImpl(h Handle) InterfaceImplInfo {
	row := r.interfaces[h.Row-1]
	return InterfaceImplInfo{
		Interface:        decodeCoded(idxTypeDefOrRefTags, row.Interface),
		CustomAttributes: r.customAttrsFor(KindInterfaceImplementation, h.Row),
	}
}

func (r *peReader) GenericParam(h Handle) GenericParamInfo {
	row := r.genParams[h.Row-1]
	var constraints []Handle
	for i, gc := range r.genConstr {
		if gc.Owner == h.Row {
			constraints = append(constraints, Handle{Kind: KindGenericParameterConstraint, Row: uint32(i + 1)})
		}
	}
	return GenericParamInfo{
		Index:            row.Number,
		Attributes:       row.Flags,
		Constraints:      constraints,
		CustomAttributes: r.customAttrsFor(KindGenericParameter, h.Row),
	}
}

func (r *peReader) GenericParamConstraint(h Handle) GenericParamConstraintInfo {
	row := r.genConstr[h.Row-1]
	return GenericParamConstraintInfo{
		Constraint:       decodeCoded(idxTypeDefOrRefTags, row.Constraint),
		CustomAttributes: r.customAttrsFor(KindGenericParameterConstraint, h.Row),
	}
}

func (r *peReader) TypeRef(h Handle) TypeRefInfo {
	row := r.typeRefs[h.Row-1]
	return TypeRefInfo{
		Namespace:       StringHandle(row.TypeNamespace),
		Name:            StringHandle(row.TypeName),
		ResolutionScope: decodeCoded(idxResolutionScopeTags, row.ResolutionScope),
	}
}

func (r *peReader) TypeSpec(h Handle) TypeSpecInfo {
	row := r.typeSpecs[h.Row-1]
	return TypeSpecInfo{
		Signature:        BlobHandle(row.Signature),
		CustomAttributes: r.customAttrsFor(KindTypeSpecification, h.Row),
	}
}

func (r *peReader) MemberRef(h Handle) MemberRefInfo {
	row := r.memberRefs[h.Row-1]
	return MemberRefInfo{
		Name:      StringHandle(row.Name),
		Signature: BlobHandle(row.Signature),
		Parent:    decodeCoded(idxMemberRefParentTags, row.Class),
	}
}

func (r *peReader) AssemblyRef(h Handle) AssemblyRefInfo {
	row := r.assemblyRefs[h.Row-1]
	return AssemblyRefInfo{
		Name:             StringHandle(row.Name),
		Culture:          StringHandle(row.Culture),
		PublicKeyOrToken: BlobHandle(row.PublicKeyOrToken),
		Version: AssemblyVersion{
			Major:    row.MajorVersion,
			Minor:    row.MinorVersion,
			Build:    row.BuildNumber,
			Revision: row.RevisionNumber,
		},
	}
}

func (r *peReader) ExportedTypes() []Handle {
	out := make([]Handle, len(r.exportedTy))
	for i := range r.exportedTy {
		out[i] = Handle{Kind: KindExportedType, Row: uint32(i + 1)}
	}
	return out
}

func (r *peReader) ExportedType(h Handle) ExportedTypeInfo {
	row := r.exportedTy[h.Row-1]
	return ExportedTypeInfo{
		Namespace:        StringHandle(row.TypeNamespace),
		Name:             StringHandle(row.TypeName),
		Attributes:       row.Flags,
		Implementation:   decodeCoded(idxImplementationTags, row.Implementation),
		CustomAttributes: r.customAttrsFor(KindExportedType, h.Row),
	}
}

func (r *peReader) ManifestResources() []Handle {
	out := make([]Handle, len(r.manifestRes))
	for i := range r.manifestRes {
		out[i] = Handle{Kind: KindManifestResource, Row: uint32(i + 1)}
	}
	return out
}

func (r *peReader) ManifestResource(h Handle) ManifestResourceInfo {
	row := r.manifestRes[h.Row-1]
	return ManifestResourceInfo{
		Name:             StringHandle(row.Name),
		Attributes:       row.Flags,
		Implementation:   decodeCoded(idxImplementationTags, row.Implementation),
		Offset:           row.Offset,
		CustomAttributes: r.customAttrsFor(KindManifestResource, h.Row),
	}
}

// ResourceData reads an embedded resource's bytes from the CLR header's
// Resources data directory: a 4-byte little-endian length prefix followed by
// the payload, addressed by the row's Offset relative to that directory.
func (r *peReader) ResourceData(h Handle) ([]byte, error) {
	row := r.manifestRes[h.Row-1]
	impl := decodeCoded(idxImplementationTags, row.Implementation)
	if !impl.IsNil() {
		return nil, badImageAt("linked manifest resource has no local bytes", h)
	}

	dir := r.f.CLR.CLRHeader.Resources
	if dir.VirtualAddress == 0 {
		return nil, badImage("image carries no managed resources directory")
	}
	base := r.f.GetOffsetFromRva(dir.VirtualAddress)

	length, err := r.f.ReadUint32(base + row.Offset)
	if err != nil {
		return nil, badImageAt("managed resource length outside the image", h)
	}
	data, err := r.f.ReadBytesAtOffset(base+row.Offset+4, length)
	if err != nil {
		return nil, badImageAt("managed resource data outside the image", h)
	}
	return data, nil
}

func (r *peReader) CustomAttribute(h Handle) CustomAttributeInfo {
	row := r.customAttrs[h.Row-1]
	return CustomAttributeInfo{
		Parent: decodeCoded(idxHasCustomAttributesTags, row.Parent),
		Ctor:   decodeCoded(idxCustomAttributeTypeTags, row.Type),
		Value:  BlobHandle(row.Value),
	}
}

func (r *peReader) MethodSemanticsByAssociation(h Handle) []MethodSemanticsEntry {
	return r.semanticsByAssociation[h]
}

func (r *peReader) String(h Handle) string {
	s, _ := r.f.StringHeap(h.Row)
	return s
}

func (r *peReader) Blob(h Handle) []byte {
	b, _ := r.f.BlobHeap(h.Row)
	return b
}

// sortHandles orders handles by Row so callers that rely on table order
// (e.g. owner-range reconstructions built from an unordered map) get a
// deterministic iteration order.
func sortHandles(hs []Handle) {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j-1].Row > hs[j].Row; j-- {
			hs[j-1], hs[j] = hs[j], hs[j-1]
		}
	}
}
