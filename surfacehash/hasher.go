// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "github.com/saferwall/dotnetsurface/log"

// TypeAttributes bits folded into a type's surface hash, ECMA-335
// §II.23.1.15 (VisibilityMask lives in classifier.go since the classifier
// also needs it).
const (
	typeAbstractFlag       uint32 = 0x00000080
	typeSealedFlag         uint32 = 0x00000100
	typeSpecialNameFlag    uint32 = 0x00000400
	typeRTSpecialNameFlag  uint32 = 0x00000800
	typeClassSemanticsMask uint32 = 0x00000020
	typeSurfaceAttrsMask          = typeAbstractFlag | typeSealedFlag | typeSpecialNameFlag |
		typeRTSpecialNameFlag | typeClassSemanticsMask | typeVisibilityMask
)

// FieldAttributes bits, ECMA-335 §II.23.1.5.
const (
	fieldStaticFlag       uint32 = 0x0010
	fieldInitOnlyFlag     uint32 = 0x0020
	fieldLiteralFlag      uint32 = 0x0040
	fieldSpecialNameFlag  uint32 = 0x0200
	fieldSurfaceAttrsMask        = memberAccessMask | fieldStaticFlag | fieldInitOnlyFlag |
		fieldLiteralFlag | fieldSpecialNameFlag
)

// MethodAttributes bits, ECMA-335 §II.23.1.10.
const (
	methodStaticFlag        uint32 = 0x0010
	methodFinalFlag         uint32 = 0x0020
	methodVirtualFlag       uint32 = 0x0040
	methodAbstractFlag      uint32 = 0x0400
	methodSpecialNameFlag   uint32 = 0x0800
	methodSurfaceAttrsMask         = memberAccessMask | methodStaticFlag | methodAbstractFlag |
		methodVirtualFlag | methodFinalFlag | methodSpecialNameFlag
)

// ParamAttributes bits, ECMA-335 §II.23.1.13. "Retval" is not an attribute
// bit on the wire; it is derived from Sequence == 0 and folded in alongside
// these.
const paramSurfaceAttrsMask uint32 = 0x0001 | 0x0002 | 0x0010 | 0x1000 // In, Out, Optional, HasDefault

// GenericParamAttributes bits, ECMA-335 §II.23.1.7.
const genericParamSurfaceAttrsMask uint16 = 0x0003 | 0x001c // VarianceMask | SpecialConstraintMask

// structLayoutTag disambiguates the synthetic struct-layout member entry
// folded into a value type's member set from an ordinary field entry. The
// value itself carries no meaning beyond being distinct from other member
// disambiguators.
const structLayoutTag uint64 = 7

// Hasher computes the surface hash of one managed assembly (§4.7). It is
// single-use: construct one per MetadataReader, call Hash once, discard it.
type Hasher struct {
	reader     MetadataReader
	opts       Options
	helper     *log.Helper
	cache      *cache
	wk         *wellKnownTypes
	classifier classifier
	identity   *identityHasher
	sig        *sigDecoder
	structSig  *sigDecoder

	surfaceCache map[Handle]bool
}

// New builds a Hasher bound to reader for the duration of a single Hash
// call.
func New(reader MetadataReader, opts Options) *Hasher {
	c := newCache()
	wk := newWellKnownTypes()
	h := &Hasher{
		reader:       reader,
		opts:         opts,
		helper:       log.NewHelper(opts.Logger),
		cache:        c,
		wk:           wk,
		surfaceCache: make(map[Handle]bool),
	}
	h.identity = newIdentityHasher(reader, c, wk)
	h.sig = h.identity.sig
	h.structSig = newSigDecoder(structFieldResolver{h: h})
	return h
}

// Hash runs the full surface-hash algorithm (§4.7) and returns the final
// u64, or a BadImageError if the metadata violates ECMA-335 in a way that
// makes the computation impossible to complete deterministically.
func (h *Hasher) Hash() (uint64, error) {
	assemblyHash := h.hashAssemblyDefinition()
	h.helper.Debugf("assembly definition hash=%#x", assemblyHash)

	internalsVisible := h.detectInternalsVisible()
	h.classifier = classifier{internalsVisible: internalsVisible}
	h.helper.Debugf("internals visible=%v", internalsVisible)

	assemblyAttrsHash := h.hashFilteredCustomAttributes(h.reader.AssemblyCustomAttributes())
	moduleAttrsHash := h.hashFilteredCustomAttributes(h.reader.ModuleCustomAttributes())

	typeHashes, err := h.hashSurfaceTypeDefs()
	if err != nil {
		return 0, err
	}

	exportedHashes, err := h.hashSurfaceExportedTypes()
	if err != nil {
		return 0, err
	}

	resourceHashes, err := h.hashSurfaceManifestResources()
	if err != nil {
		return 0, err
	}

	all := make([]uint64, 0, len(typeHashes)+len(exportedHashes)+len(resourceHashes)+4)
	all = append(all, assemblyHash, assemblyAttrsHash, moduleAttrsHash)
	all = append(all, typeHashes...)
	all = append(all, exportedHashes...)
	all = append(all, resourceHashes...)

	return SortedCombineSeq(all), nil
}

// hashAssemblyDefinition implements §4.7 step 1. Version is deliberately
// excluded so a version-only bump does not invalidate downstream caches.
func (h *Hasher) hashAssemblyDefinition() uint64 {
	return CombineSeq([]uint64{
		h.identity.stringHash(h.reader.AssemblyName()),
		h.identity.stringHash(h.reader.AssemblyCulture()),
		h.identity.blobHash(h.reader.AssemblyPublicKey()),
	})
}

// detectInternalsVisible implements §4.7 step 2.
func (h *Hasher) detectInternalsVisible() bool {
	for _, caH := range h.reader.AssemblyCustomAttributes() {
		info := h.reader.CustomAttribute(caH)
		owner := h.identity.attributeOwnerType(info.Ctor)
		if owner.IsNil() {
			continue
		}
		ns, name := h.typeHandleNamespaceName(owner)
		if ns == "System.Runtime.CompilerServices" && name == "InternalsVisibleToAttribute" {
			return true
		}
	}
	return false
}

// hashFilteredCustomAttributes implements §4.4/§4.6/§4.7 step 3: hash every
// attribute in handles, dropping ones whose type the well-known registry
// has classified as ignored, unless IncludeAllAttributes is set.
func (h *Hasher) hashFilteredCustomAttributes(handles []Handle) uint64 {
	if len(handles) == 0 {
		return Offset
	}
	if h.opts.IncludeAllAttributes {
		return h.identity.hashCustomAttributes(handles)
	}
	kept := make([]Handle, 0, len(handles))
	for _, caH := range handles {
		info := h.reader.CustomAttribute(caH)
		owner := h.identity.attributeOwnerType(info.Ctor)
		if !owner.IsNil() {
			ns, name := h.typeHandleNamespaceName(owner)
			h.wk.observe(owner, ns, name)
			if h.wk.isIgnoredAttribute(owner) {
				continue
			}
		}
		kept = append(kept, caH)
	}
	return h.identity.hashCustomAttributes(kept)
}

// typeHandleNamespaceName resolves the namespace/name strings of a coded
// type handle without going through the memoized usage hash, for call
// sites (well-known registry lookups) that need the raw strings rather
// than a hash.
func (h *Hasher) typeHandleNamespaceName(handle Handle) (string, string) {
	switch handle.Kind {
	case KindTypeDefinition:
		info := h.reader.TypeDef(handle)
		return h.reader.String(info.Namespace), h.reader.String(info.Name)
	case KindTypeReference:
		info := h.reader.TypeRef(handle)
		return h.reader.String(info.Namespace), h.reader.String(info.Name)
	default:
		return "", ""
	}
}

func isConstructorName(name string) bool {
	return name == ".ctor" || name == ".cctor"
}

// typeDefInSurface reports whether handle is in surface, including the
// "every enclosing type is in surface" rule for nested types (§4.5).
func (h *Hasher) typeDefInSurface(handle Handle) bool {
	if v, ok := h.surfaceCache[handle]; ok {
		return v
	}
	info := h.reader.TypeDef(handle)
	result := h.classifier.typeInSurface(info.Attributes, h.reader.String(info.Name))
	if result && !info.Enclosing.IsNil() {
		result = h.typeDefInSurface(info.Enclosing)
	}
	h.surfaceCache[handle] = result
	return result
}

// hashSurfaceTypeDefs implements §4.7 step 4.
func (h *Hasher) hashSurfaceTypeDefs() ([]uint64, error) {
	var hashes []uint64
	for _, td := range h.reader.TypeDefs() {
		if !h.typeDefInSurface(td) {
			continue
		}
		v, err := h.hashTypeDefSurface(td)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, v)
	}
	return hashes, nil
}

// hashTypeDefSurface implements §4.7.1.
func (h *Hasher) hashTypeDefSurface(handle Handle) (uint64, error) {
	info := h.reader.TypeDef(handle)

	attrsHash := uint64(info.Attributes & typeSurfaceAttrsMask)
	nsHash := h.identity.stringHash(info.Namespace)
	nameHash := h.identity.stringHash(info.Name)
	genericHash := h.hashGenericParams(info.GenericParams)
	superHash := h.hashSuperTypes(info)
	containingHash := h.identity.resolveTypeUsage(info.Enclosing)

	memberHashes, err := h.hashTypeMembers(handle, info)
	if err != nil {
		return 0, err
	}
	memberSetHash := SortedCombineSeq(memberHashes)

	attrsBlobHash := h.hashFilteredCustomAttributes(info.CustomAttributes)

	return CombineSeq([]uint64{
		attrsHash, nsHash, nameHash, genericHash, superHash, containingHash, memberSetHash, attrsBlobHash,
	}), nil
}

// hashSuperTypes implements §4.7.1 item 4: base-type usage hash plus the
// sorted set of interface-implementation hashes, skipping local interface
// types that resolve outside the surface.
func (h *Hasher) hashSuperTypes(info TypeDefInfo) uint64 {
	baseHash := h.identity.resolveTypeUsage(info.Extends)

	ifaceHashes := make([]uint64, 0, len(info.InterfaceImpls))
	for _, implH := range info.InterfaceImpls {
		impl := h.reader.InterfaceImpl(implH)
		if impl.Interface.Kind == KindTypeDefinition && !h.typeDefInSurface(impl.Interface) {
			continue
		}
		ifaceUsage := h.identity.resolveTypeUsage(impl.Interface)
		implAttrsHash := h.hashFilteredCustomAttributes(impl.CustomAttributes)
		ifaceHashes = append(ifaceHashes, Combine2(ifaceUsage, implAttrsHash))
	}
	return Combine2(baseHash, SortedCombineSeq(ifaceHashes))
}

// hashTypeMembers implements the per-member contribution rules of §4.7.1:
// fields, methods, properties, events, plus the struct-layout contribution
// for value types.
func (h *Hasher) hashTypeMembers(handle Handle, info TypeDefInfo) ([]uint64, error) {
	var members []uint64
	accessors := make(map[Handle]bool)

	for _, fh := range info.Fields {
		field := h.reader.Field(fh)
		if !h.classifier.memberInSurface(field.Attributes) {
			continue
		}
		v, err := h.hashField(field)
		if err != nil {
			return nil, err
		}
		members = append(members, v)
	}

	if h.isValueTypeExtends(info.Extends) && hasInstanceField(info, h.reader) {
		members = append(members, Combine2(h.structFieldHash(handle), structLayoutTag))
	}

	for _, mh := range info.Methods {
		method := h.reader.Method(mh)
		inSurface := h.classifier.memberInSurface(method.Attributes)
		if inSurface {
			v, err := h.hashMethod(method)
			if err != nil {
				return nil, err
			}
			members = append(members, v)
		}
		if method.Attributes&methodSpecialNameFlag != 0 && !isConstructorName(h.reader.String(method.Name)) {
			accessors[mh] = inSurface
		}
	}

	for _, ph := range info.Properties {
		prop := h.reader.Property(ph)
		if v, ok := h.hashAccessorBackedMember(prop.Name, prop.CustomAttributes,
			h.reader.MethodSemanticsByAssociation(ph), accessors); ok {
			members = append(members, v)
		}
	}

	for _, eh := range info.Events {
		event := h.reader.Event(eh)
		if v, ok := h.hashAccessorBackedMember(event.Name, event.CustomAttributes,
			h.reader.MethodSemanticsByAssociation(eh), accessors); ok {
			members = append(members, v)
		}
	}

	return members, nil
}

// hashAccessorBackedMember implements the shared property/event rule: fold
// name and custom attributes into the member set only if at least one
// associated accessor method is itself a surface api-accessor.
func (h *Hasher) hashAccessorBackedMember(name Handle, customAttrs []Handle, semantics []MethodSemanticsEntry, accessors map[Handle]bool) (uint64, bool) {
	anyAccessor := false
	for _, s := range semantics {
		if accessors[s.Method] {
			anyAccessor = true
			break
		}
	}
	if !anyAccessor {
		return 0, false
	}
	nameHash := h.identity.stringHash(name)
	caHash := h.hashFilteredCustomAttributes(customAttrs)
	return Combine2(nameHash, caHash), true
}

func (h *Hasher) hashField(field FieldInfo) (uint64, error) {
	nameHash := h.identity.stringHash(field.Name)
	attrsHash := uint64(field.Attributes & fieldSurfaceAttrsMask)
	typeHash, err := h.sig.decodeFieldSig(h.reader.Blob(field.Signature))
	if err != nil {
		return 0, err
	}
	constHash := Offset
	if field.Attributes&fieldLiteralFlag != 0 {
		constHash = h.identity.blobHash(field.Constant)
	}
	caHash := h.hashFilteredCustomAttributes(field.CustomAttributes)
	return CombineSeq([]uint64{nameHash, attrsHash, typeHash, constHash, caHash}), nil
}

func (h *Hasher) hashMethod(method MethodInfo) (uint64, error) {
	nameHash := h.identity.stringHash(method.Name)
	attrsHash := uint64(method.Attributes & methodSurfaceAttrsMask)
	genericHash := h.hashGenericParams(method.GenericParams)

	paramHashes := make([]uint64, 0, len(method.Params))
	for _, ph := range method.Params {
		param := h.reader.Param(ph)
		paramHashes = append(paramHashes, h.hashParam(param))
	}
	paramSetHash := CombineSeq(paramHashes)

	sigHash, genericParamCount, err := h.sig.decodeMethodSig(h.reader.Blob(method.Signature))
	if err != nil {
		return 0, err
	}
	caHash := h.hashFilteredCustomAttributes(method.CustomAttributes)

	return CombineSeq([]uint64{
		nameHash, attrsHash, genericHash, paramSetHash, sigHash, uint64(genericParamCount), caHash,
	}), nil
}

func (h *Hasher) hashParam(param ParamInfo) uint64 {
	nameHash := h.identity.stringHash(param.Name)
	attrsHash := uint64(param.Attributes & paramSurfaceAttrsMask)
	retvalHash := uint64(0)
	if param.Sequence == 0 {
		retvalHash = 1
	}
	caHash := h.hashFilteredCustomAttributes(param.CustomAttributes)
	constHash := h.identity.blobHash(param.Constant)
	return CombineSeq([]uint64{nameHash, attrsHash, retvalHash, caHash, constHash})
}

// hashGenericParams implements §4.7.2.
func (h *Hasher) hashGenericParams(handles []Handle) uint64 {
	if len(handles) == 0 {
		return Offset
	}
	perParam := make([]uint64, 0, len(handles))
	for _, gh := range handles {
		gp := h.reader.GenericParam(gh)

		constraintHashes := make([]uint64, 0, len(gp.Constraints))
		for _, ch := range gp.Constraints {
			c := h.reader.GenericParamConstraint(ch)
			usage := h.identity.resolveTypeUsage(c.Constraint)
			caHash := h.hashFilteredCustomAttributes(c.CustomAttributes)
			constraintHashes = append(constraintHashes, Combine2(usage, caHash))
		}
		constraintSetHash := SortedCombineSeq(constraintHashes)
		caHash := h.hashFilteredCustomAttributes(gp.CustomAttributes)

		perParam = append(perParam, CombineSeq([]uint64{
			uint64(gp.Index), uint64(gp.Attributes & genericParamSurfaceAttrsMask), constraintSetHash, caHash,
		}))
	}
	return SortedCombineSeq(perParam)
}

// hashSurfaceExportedTypes implements §4.7 step 5.
func (h *Hasher) hashSurfaceExportedTypes() ([]uint64, error) {
	var hashes []uint64
	for _, eh := range h.reader.ExportedTypes() {
		info := h.reader.ExportedType(eh)
		if !h.classifier.exportedTypeInSurface(info.Attributes, h.reader.String(info.Name)) {
			continue
		}
		nsHash := h.identity.stringHash(info.Namespace)
		nameHash := h.identity.stringHash(info.Name)
		implHash := h.resolveExportedTypeImplementation(info.Implementation)
		caHash := h.hashFilteredCustomAttributes(info.CustomAttributes)
		hashes = append(hashes, CombineSeq([]uint64{nsHash, nameHash, implHash, caHash}))
	}
	return hashes, nil
}

// resolveExportedTypeImplementation walks the Implementation coded handle:
// an AssemblyRef for a type defined in another assembly, or a chain of
// ExportedType rows for a nested exported type. The File-implementation
// case (a type in another module of the same assembly) has no handle kind
// of its own in this package's model and folds to Offset.
func (h *Hasher) resolveExportedTypeImplementation(handle Handle) uint64 {
	if handle.IsNil() {
		return Offset
	}
	switch handle.Kind {
	case KindAssemblyReference:
		return h.identity.hashAssemblyRef(handle)
	case KindExportedType:
		info := h.reader.ExportedType(handle)
		nsHash := h.identity.stringHash(info.Namespace)
		nameHash := h.identity.stringHash(info.Name)
		parentHash := h.resolveExportedTypeImplementation(info.Implementation)
		return CombineSeq([]uint64{nsHash, nameHash, parentHash})
	default:
		return Offset
	}
}

// hashSurfaceManifestResources implements §4.7 step 6.
func (h *Hasher) hashSurfaceManifestResources() ([]uint64, error) {
	assemblyName := h.reader.String(h.reader.AssemblyName())
	var hashes []uint64
	for _, rh := range h.reader.ManifestResources() {
		info := h.reader.ManifestResource(rh)
		if !h.classifier.resourceInSurface(info.Attributes, h.reader.String(info.Name), assemblyName) {
			continue
		}
		nameHash := h.identity.stringHash(info.Name)
		digestHash := Offset
		if info.Implementation.IsNil() {
			data, err := h.reader.ResourceData(rh)
			if err != nil {
				return nil, err
			}
			digestHash = hashResourceDigest(data)
		}
		caHash := h.hashFilteredCustomAttributes(info.CustomAttributes)
		hashes = append(hashes, CombineSeq([]uint64{nameHash, digestHash, caHash}))
	}
	return hashes, nil
}

func hasInstanceField(info TypeDefInfo, reader MetadataReader) bool {
	for _, fh := range info.Fields {
		f := reader.Field(fh)
		if f.Attributes&fieldStaticFlag == 0 && f.Attributes&fieldLiteralFlag == 0 {
			return true
		}
	}
	return false
}

// isValueTypeExtends reports whether extends names System.ValueType,
// marking the owning typedef as a struct for §4.7.3 purposes. Enums
// extend System.Enum instead, so they are naturally excluded here.
func (h *Hasher) isValueTypeExtends(extends Handle) bool {
	if extends.IsNil() {
		return false
	}
	ns, name := h.typeHandleNamespaceName(extends)
	return ns == "System" && name == "ValueType"
}

// structFieldHash implements §4.7.3's struct_field_hash[type]: the sorted
// combine of each instance field's type hash, resolved through
// structFieldResolver so nested value-typed fields recurse into their own
// struct_field_hash rather than the ordinary usage hash. Non-value types
// delegate straight to the usage hash.
func (h *Hasher) structFieldHash(handle Handle) uint64 {
	if v, ok := h.cache.structFieldValue(handle); ok {
		return v
	}
	info := h.reader.TypeDef(handle)
	if !h.isValueTypeExtends(info.Extends) {
		v := h.identity.hashTypeDef(handle)
		h.cache.setStructField(handle, v)
		return v
	}

	h.cache.preStoreStructField(handle)
	var fieldHashes []uint64
	for _, fh := range info.Fields {
		field := h.reader.Field(fh)
		if field.Attributes&fieldStaticFlag != 0 || field.Attributes&fieldLiteralFlag != 0 {
			continue
		}
		sigHash, err := h.structSig.decodeFieldSig(h.reader.Blob(field.Signature))
		if err != nil {
			sigHash = Offset
		}
		fieldHashes = append(fieldHashes, sigHash)
	}
	v := SortedCombineSeq(fieldHashes)
	h.cache.setStructField(handle, v)
	return v
}

// structFieldResolver is the "different resolution callback" §4.7.3 calls
// for: a typedef reached while decoding an instance field's type recurses
// into structFieldHash rather than the ordinary usage hash; a type
// reference still resolves through the ordinary usage hash, since only
// local typedefs participate in this assembly's layout computation.
type structFieldResolver struct {
	h *Hasher
}

func (r structFieldResolver) hashTypeDef(handle Handle) uint64 {
	return r.h.structFieldHash(handle)
}

func (r structFieldResolver) hashTypeRef(handle Handle) uint64 {
	return r.h.identity.hashTypeRef(handle)
}
