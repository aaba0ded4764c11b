// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// identityHasher computes §4.8's entity "usage" hashes: the weak identity
// a reference carries, as opposed to the full surface a definition hash
// exposes. Every method memoizes through the shared cache so a type
// referenced from a hundred call sites is only resolved once.
type identityHasher struct {
	reader MetadataReader
	cache  *cache
	wk     *wellKnownTypes
	sig    *sigDecoder
}

func newIdentityHasher(reader MetadataReader, cache *cache, wk *wellKnownTypes) *identityHasher {
	ih := &identityHasher{reader: reader, cache: cache, wk: wk}
	ih.sig = newSigDecoder(ih)
	return ih
}

func (ih *identityHasher) stringHash(h Handle) uint64 {
	if h.IsNil() {
		return Offset
	}
	return ih.cache.getOrComputeString(h.Row, ih.reader.String(h))
}

func (ih *identityHasher) blobHash(h Handle) uint64 {
	if h.IsNil() {
		return Offset
	}
	return ih.cache.getOrComputeBlob(h.Row, ih.reader.Blob(h))
}

func (ih *identityHasher) versionHash(v AssemblyVersion) uint64 {
	return Combine4(uint64(v.Major), uint64(v.Minor), uint64(v.Revision), uint64(v.Build))
}

// hashAssemblyRef implements the AssemblyRef usage hash.
func (ih *identityHasher) hashAssemblyRef(h Handle) uint64 {
	return ih.cache.getOrComputeEntity(h, func() uint64 {
		info := ih.reader.AssemblyRef(h)
		return Combine4(
			ih.stringHash(info.Name),
			ih.versionHash(info.Version),
			ih.stringHash(info.Culture),
			ih.blobHash(info.PublicKeyOrToken),
		)
	})
}

// hashTypeRef implements the TypeRef usage hash, dispatching on the
// resolution scope's kind.
func (ih *identityHasher) hashTypeRef(h Handle) uint64 {
	return ih.cache.getOrComputeEntity(h, func() uint64 {
		info := ih.reader.TypeRef(h)
		ih.wk.observe(h, ih.reader.String(info.Namespace), ih.reader.String(info.Name))

		var scopeHash uint64
		switch info.ResolutionScope.Kind {
		case KindAssemblyReference:
			scopeHash = ih.hashAssemblyRef(info.ResolutionScope)
		case KindTypeReference:
			scopeHash = ih.hashTypeRef(info.ResolutionScope)
		default:
			// ModuleDefinition, ModuleReference, or absent: fold straight
			// through to namespace/name below.
			return Combine2(ih.stringHash(info.Namespace), ih.stringHash(info.Name))
		}
		return Combine3(scopeHash, ih.stringHash(info.Namespace), ih.stringHash(info.Name))
	})
}

// hashTypeDef implements the type-definition-as-usage hash: namespace and
// name only, deliberately omitting visibility and members (usage captures
// identity, not surface).
func (ih *identityHasher) hashTypeDef(h Handle) uint64 {
	return ih.cache.getOrComputeEntity(h, func() uint64 {
		info := ih.reader.TypeDef(h)
		ih.wk.observe(h, ih.reader.String(info.Namespace), ih.reader.String(info.Name))
		return Combine2(ih.stringHash(info.Namespace), ih.stringHash(info.Name))
	})
}

// hashTypeSpec implements the TypeSpec usage hash: the decoded signature
// hash, combined with the type spec row's own custom attributes.
func (ih *identityHasher) hashTypeSpec(h Handle) uint64 {
	return ih.cache.getOrComputeEntity(h, func() uint64 {
		info := ih.reader.TypeSpec(h)
		sigHash, err := ih.sig.decodeTypeSpecSig(ih.reader.Blob(info.Signature))
		if err != nil {
			sigHash = Offset
		}
		attrsHash := ih.hashCustomAttributes(info.CustomAttributes)
		return Combine2(sigHash, attrsHash)
	})
}

// hashMemberRefMethod implements the method-flavored MemberRef usage hash.
func (ih *identityHasher) hashMemberRefMethod(h Handle) uint64 {
	return ih.cache.getOrComputeEntity(h, func() uint64 {
		info := ih.reader.MemberRef(h)
		sigHash, genericCount, err := ih.sig.decodeMethodSig(ih.reader.Blob(info.Signature))
		if err != nil {
			sigHash, genericCount = Offset, 0
		}
		return Combine4(ih.stringHash(info.Name), sigHash, uint64(genericCount), Offset)
	})
}

// hashMemberRefField implements the field-flavored MemberRef usage hash:
// analogous to the method case, but the signature has no generic-parameter
// count of its own so that position folds in as a constant zero.
func (ih *identityHasher) hashMemberRefField(h Handle) uint64 {
	return ih.cache.getOrComputeEntity(h, func() uint64 {
		info := ih.reader.MemberRef(h)
		sigHash, err := ih.sig.decodeFieldSig(ih.reader.Blob(info.Signature))
		if err != nil {
			sigHash = Offset
		}
		return Combine4(ih.stringHash(info.Name), sigHash, 0, Offset)
	})
}

// hashMemberRef dispatches a MemberRef to its field or method usage hash by
// inspecting the signature blob's leading byte (0x06 selects FieldSig; any
// other calling-convention byte selects MethodRefSig), since the row itself
// does not otherwise distinguish the two.
func (ih *identityHasher) hashMemberRef(h Handle) uint64 {
	info := ih.reader.MemberRef(h)
	blob := ih.reader.Blob(info.Signature)
	if len(blob) > 0 && blob[0] == sigCallField {
		return ih.hashMemberRefField(h)
	}
	return ih.hashMemberRefMethod(h)
}

// resolveTypeUsage dispatches a coded TypeDefOrRef/TypeOrMethodDef-flavored
// handle to the matching usage hash, used wherever a reference to a type
// definition, reference, or spec is folded by handle kind alone (base
// types, interface implementations, field/parameter owners).
func (ih *identityHasher) resolveTypeUsage(h Handle) uint64 {
	if h.IsNil() {
		return Offset
	}
	switch h.Kind {
	case KindTypeDefinition:
		return ih.hashTypeDef(h)
	case KindTypeReference:
		return ih.hashTypeRef(h)
	case KindTypeSpecification:
		return ih.hashTypeSpec(h)
	default:
		return Offset
	}
}

// hashCustomAttributes folds every given custom attribute (constructor hash
// plus value blob) into a sorted set; it filters nothing out itself. An
// empty list folds to Offset.
func (ih *identityHasher) hashCustomAttributes(handles []Handle) uint64 {
	if len(handles) == 0 {
		return Offset
	}
	hashes := make([]uint64, 0, len(handles))
	for _, h := range handles {
		info := ih.reader.CustomAttribute(h)
		hashes = append(hashes, ih.hashOneCustomAttribute(info))
	}
	return SortedCombineSeq(hashes)
}

func (ih *identityHasher) hashOneCustomAttribute(info CustomAttributeInfo) uint64 {
	ctorHash := ih.resolveCustomAttributeCtor(info.Ctor)
	blobHash := hashCustomAttributeBlob(ih.reader.Blob(info.Value))
	return Combine2(ctorHash, blobHash)
}

// resolveCustomAttributeCtor resolves a CustomAttributeType coded handle
// (MethodDef or MemberRef) to a hash identifying the constructor used, so
// that two attributes built from distinct constructors never collide.
func (ih *identityHasher) resolveCustomAttributeCtor(h Handle) uint64 {
	switch h.Kind {
	case KindMethodDefinition:
		info := ih.reader.Method(h)
		sigHash, genericCount, err := ih.sig.decodeMethodSig(ih.reader.Blob(info.Signature))
		if err != nil {
			sigHash, genericCount = Offset, 0
		}
		return Combine4(ih.stringHash(info.Name), sigHash, uint64(genericCount), Offset)
	case KindMemberReference:
		return ih.hashMemberRefMethod(h)
	default:
		return Offset
	}
}

// attributeOwnerType resolves a CustomAttributeType coded handle to the
// Handle of its owning type definition/reference, so the §4.6 registry can
// be consulted (that registry is keyed by type handle, not ctor handle).
// MemberRef carries its owner on Parent; a MethodDef-flavored ctor has no
// owner to walk through this reader projection, but such constructors are
// always declared in the current assembly and never reached through a
// TypeRef, so they can never match the well-known filter's
// System*/CompilerServices namespaces anyway.
func (ih *identityHasher) attributeOwnerType(h Handle) Handle {
	if h.Kind != KindMemberReference {
		return Handle{}
	}
	info := ih.reader.MemberRef(h)
	return info.Parent
}
