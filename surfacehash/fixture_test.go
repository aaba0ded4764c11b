// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// fakeReader is a hand-built, in-memory MetadataReader used by tests in
// place of parsing a real assembly. It stores every row keyed by the same
// Handle the production FromPE adapter would hand out, so test authors can
// build a small, explicit object graph per scenario.
type fakeReader struct {
	strings map[uint32]string
	blobs   map[uint32][]byte

	assemblyName, assemblyCulture, assemblyPubKey Handle
	assemblyAttrs, moduleAttrs                     []Handle

	typeDefs    []Handle
	typeDefInfo map[Handle]TypeDefInfo

	fields      map[Handle]FieldInfo
	methods     map[Handle]MethodInfo
	params      map[Handle]ParamInfo
	properties  map[Handle]PropertyInfo
	events      map[Handle]EventInfo
	ifaceImpls  map[Handle]InterfaceImplInfo
	genParams   map[Handle]GenericParamInfo
	genConstr   map[Handle]GenericParamConstraintInfo
	typeRefs    map[Handle]TypeRefInfo
	typeSpecs   map[Handle]TypeSpecInfo
	memberRefs  map[Handle]MemberRefInfo
	assemblyRef map[Handle]AssemblyRefInfo

	exportedTypes     []Handle
	exportedTypeInfo  map[Handle]ExportedTypeInfo
	manifestResources []Handle
	manifestResInfo   map[Handle]ManifestResourceInfo
	resourceData      map[Handle][]byte

	customAttrs map[Handle]CustomAttributeInfo
	semantics   map[Handle][]MethodSemanticsEntry
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		strings:          make(map[uint32]string),
		blobs:            make(map[uint32][]byte),
		typeDefInfo:      make(map[Handle]TypeDefInfo),
		fields:           make(map[Handle]FieldInfo),
		methods:          make(map[Handle]MethodInfo),
		params:           make(map[Handle]ParamInfo),
		properties:       make(map[Handle]PropertyInfo),
		events:           make(map[Handle]EventInfo),
		ifaceImpls:       make(map[Handle]InterfaceImplInfo),
		genParams:        make(map[Handle]GenericParamInfo),
		genConstr:        make(map[Handle]GenericParamConstraintInfo),
		typeRefs:         make(map[Handle]TypeRefInfo),
		typeSpecs:        make(map[Handle]TypeSpecInfo),
		memberRefs:       make(map[Handle]MemberRefInfo),
		assemblyRef:      make(map[Handle]AssemblyRefInfo),
		exportedTypeInfo: make(map[Handle]ExportedTypeInfo),
		manifestResInfo:  make(map[Handle]ManifestResourceInfo),
		resourceData:     make(map[Handle][]byte),
		customAttrs:      make(map[Handle]CustomAttributeInfo),
		semantics:        make(map[Handle][]MethodSemanticsEntry),
	}
}

// str interns s and returns a Handle for it; identical strings at different
// call sites receive the same offset, matching a real #Strings heap.
func (f *fakeReader) str(s string) Handle {
	if s == "" {
		return Handle{}
	}
	for off, existing := range f.strings {
		if existing == s {
			return StringHandle(off)
		}
	}
	off := uint32(len(f.strings) + 1)
	f.strings[off] = s
	return StringHandle(off)
}

func (f *fakeReader) blob(b []byte) Handle {
	if len(b) == 0 {
		return Handle{}
	}
	off := uint32(len(f.blobs) + 1)
	f.blobs[off] = b
	return BlobHandle(off)
}

func (f *fakeReader) AssemblyName() Handle         { return f.assemblyName }
func (f *fakeReader) AssemblyCulture() Handle       { return f.assemblyCulture }
func (f *fakeReader) AssemblyPublicKey() Handle     { return f.assemblyPubKey }
func (f *fakeReader) AssemblyCustomAttributes() []Handle { return f.assemblyAttrs }
func (f *fakeReader) ModuleCustomAttributes() []Handle   { return f.moduleAttrs }

func (f *fakeReader) TypeDefs() []Handle               { return f.typeDefs }
func (f *fakeReader) TypeDef(h Handle) TypeDefInfo      { return f.typeDefInfo[h] }
func (f *fakeReader) Field(h Handle) FieldInfo          { return f.fields[h] }
func (f *fakeReader) Method(h Handle) MethodInfo        { return f.methods[h] }
func (f *fakeReader) Param(h Handle) ParamInfo          { return f.params[h] }
func (f *fakeReader) Property(h Handle) PropertyInfo    { return f.properties[h] }
func (f *fakeReader) Event(h Handle) EventInfo          { return f.events[h] }
func (f *fakeReader) InterfaceImpl(h Handle) InterfaceImplInfo { return f.ifaceImpls[h] }
func (f *fakeReader) GenericParam(h Handle) GenericParamInfo   { return f.genParams[h] }
func (f *fakeReader) GenericParamConstraint(h Handle) GenericParamConstraintInfo {
	return f.genConstr[h]
}

func (f *fakeReader) TypeRef(h Handle) TypeRefInfo     { return f.typeRefs[h] }
func (f *fakeReader) TypeSpec(h Handle) TypeSpecInfo   { return f.typeSpecs[h] }
func (f *fakeReader) MemberRef(h Handle) MemberRefInfo { return f.memberRefs[h] }
func (f *fakeReader) AssemblyRef(h Handle) AssemblyRefInfo { return f.assemblyRef[h] }

func (f *fakeReader) ExportedTypes() []Handle                  { return f.exportedTypes }
func (f *fakeReader) ExportedType(h Handle) ExportedTypeInfo     { return f.exportedTypeInfo[h] }
func (f *fakeReader) ManifestResources() []Handle                { return f.manifestResources }
func (f *fakeReader) ManifestResource(h Handle) ManifestResourceInfo {
	return f.manifestResInfo[h]
}
func (f *fakeReader) ResourceData(h Handle) ([]byte, error) { return f.resourceData[h], nil }

func (f *fakeReader) CustomAttribute(h Handle) CustomAttributeInfo { return f.customAttrs[h] }
func (f *fakeReader) MethodSemanticsByAssociation(h Handle) []MethodSemanticsEntry {
	return f.semantics[h]
}

func (f *fakeReader) String(h Handle) string {
	if h.IsNil() {
		return ""
	}
	return f.strings[h.Row]
}
func (f *fakeReader) Blob(h Handle) []byte {
	if h.IsNil() {
		return nil
	}
	return f.blobs[h.Row]
}

// fieldSig builds a minimal FIELD signature blob (calling convention 0x06
// followed by an ELEMENT_TYPE byte), enough for decodeFieldSig to resolve a
// primitive type without needing a type-resolver callback.
func fieldSig(elementType byte) []byte {
	return []byte{sigCallField, elementType}
}

// methodSig builds a minimal default-calling-convention MethodRefSig/
// MethodDefSig blob: 0 generic params, paramCount params, then a return
// type, all primitive element types so no resolver callback is needed.
func methodSig(retType byte, paramTypes ...byte) []byte {
	b := []byte{0x00, byte(len(paramTypes)), retType}
	b = append(b, paramTypes...)
	return b
}

// newTypeDef registers a minimal type named name in namespace ns with the
// given attributes and a nil Extends (no base usage resolution needed), and
// returns its Handle; callers flesh it out via typeDefInfo and setTypeDef.
func (f *fakeReader) newTypeDef(ns, name string, attrs uint32) Handle {
	row := uint32(len(f.typeDefs) + 1)
	h := Handle{Kind: KindTypeDefinition, Row: row}
	f.typeDefs = append(f.typeDefs, h)
	f.typeDefInfo[h] = TypeDefInfo{
		Namespace:  f.str(ns),
		Name:       f.str(name),
		Attributes: attrs,
	}
	return h
}

func (f *fakeReader) setTypeDef(h Handle, info TypeDefInfo) {
	f.typeDefInfo[h] = info
}

func (f *fakeReader) newField(name string, attrs uint32, sig []byte) Handle {
	row := uint32(len(f.fields) + 1)
	h := Handle{Kind: KindFieldDefinition, Row: row}
	f.fields[h] = FieldInfo{
		Name:       f.str(name),
		Attributes: attrs,
		Signature:  f.blob(sig),
	}
	return h
}

func (f *fakeReader) newMethod(name string, attrs uint32, sig []byte) Handle {
	row := uint32(len(f.methods) + 1)
	h := Handle{Kind: KindMethodDefinition, Row: row}
	f.methods[h] = MethodInfo{
		Name:       f.str(name),
		Attributes: attrs,
		Signature:  f.blob(sig),
	}
	return h
}
