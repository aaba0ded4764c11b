// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "testing"

// buildAssembly returns a fakeReader with a single public class "Widget" in
// namespace "Acme" carrying one public int32 field "Count", ready for the
// caller to mutate before hashing.
func buildAssembly(t *testing.T) (*fakeReader, Handle) {
	t.Helper()
	f := newFakeReader()
	f.assemblyName = f.str("Acme.Widgets")
	f.assemblyCulture = f.str("")

	td := f.newTypeDef("Acme", "Widget", typePublic)
	fh := f.newField("Count", memberPublic, fieldSig(elementI4))
	info := f.typeDefInfo[td]
	info.Fields = []Handle{fh}
	f.setTypeDef(td, info)
	return f, td
}

func mustHash(t *testing.T, f *fakeReader) uint64 {
	t.Helper()
	v, err := New(f, Options{}).Hash()
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return v
}

func TestHashDeterministic(t *testing.T) {
	f1, _ := buildAssembly(t)
	f2, _ := buildAssembly(t)
	if mustHash(t, f1) != mustHash(t, f2) {
		t.Fatal("two structurally identical assemblies hashed differently")
	}
}

func TestHashReorderInvariant(t *testing.T) {
	f := newFakeReader()
	f.assemblyName = f.str("Acme.Widgets")

	td := f.newTypeDef("Acme", "Widget", typePublic)
	fa := f.newField("A", memberPublic, fieldSig(elementI4))
	fb := f.newField("B", memberPublic, fieldSig(elementI4))
	info := f.typeDefInfo[td]
	info.Fields = []Handle{fa, fb}
	f.setTypeDef(td, info)
	forward := mustHash(t, f)

	f2 := newFakeReader()
	f2.assemblyName = f2.str("Acme.Widgets")
	td2 := f2.newTypeDef("Acme", "Widget", typePublic)
	fb2 := f2.newField("B", memberPublic, fieldSig(elementI4))
	fa2 := f2.newField("A", memberPublic, fieldSig(elementI4))
	info2 := f2.typeDefInfo[td2]
	info2.Fields = []Handle{fb2, fa2}
	f2.setTypeDef(td2, info2)
	reversed := mustHash(t, f2)

	if forward != reversed {
		t.Fatal("member order affected the surface hash; members should sorted-combine")
	}
}

func TestHashRenameSensitive(t *testing.T) {
	f, td := buildAssembly(t)
	before := mustHash(t, f)

	info := f.typeDefInfo[td]
	info.Name = f.str("Gadget")
	f.setTypeDef(td, info)
	after := mustHash(t, f)

	if before == after {
		t.Fatal("renaming a public type did not change the surface hash")
	}
}

func TestHashNonPublicTypeExcluded(t *testing.T) {
	f := newFakeReader()
	f.assemblyName = f.str("Acme.Widgets")
	f.newTypeDef("Acme", "Widget", typePublic)
	withOne := mustHash(t, f)

	f.newTypeDef("Acme", "Internal", typeNotPublic)
	withTwo := mustHash(t, f)

	if withOne != withTwo {
		t.Fatal("an internal (non-public) type changed the surface hash")
	}
}

func TestHashInternalsVisibleToGate(t *testing.T) {
	f := newFakeReader()
	f.assemblyName = f.str("Acme.Widgets")
	f.newTypeDef("Acme", "Widget", typePublic)
	f.newTypeDef("Acme", "Internal", typeNotPublic)
	withoutIVT := mustHash(t, f)

	f2 := newFakeReader()
	f2.assemblyName = f2.str("Acme.Widgets")
	f2.newTypeDef("Acme", "Widget", typePublic)
	f2.newTypeDef("Acme", "Internal", typeNotPublic)

	ctor := Handle{Kind: KindMemberReference, Row: 1}
	ivtType := f2.newTypeDef("System.Runtime.CompilerServices", "InternalsVisibleToAttribute", typePublic)
	f2.memberRefs[ctor] = MemberRefInfo{
		Name:      f2.str(".ctor"),
		Signature: f2.blob(methodSig(elementVoid, elementString)),
		Parent:    ivtType,
	}
	caH := Handle{Kind: KindCustomAttribute, Row: 1}
	f2.customAttrs[caH] = CustomAttributeInfo{
		Ctor:  ctor,
		Value: f2.blob([]byte{0x01, 0x00, 0x00, 0x00}),
	}
	f2.assemblyAttrs = []Handle{caH}
	withIVT := mustHash(t, f2)

	if withoutIVT == withIVT {
		t.Fatal("InternalsVisibleTo did not bring the internal type into the surface")
	}
}

func TestHashStructLayoutSensitive(t *testing.T) {
	build := func(fieldType byte) uint64 {
		f := newFakeReader()
		f.assemblyName = f.str("Acme.Widgets")

		valueType := f.newTypeDef("System", "ValueType", typePublic)

		td := f.newTypeDef("Acme", "Point", typePublic)
		info := f.typeDefInfo[td]
		info.Extends = valueType
		fh := f.newField("X", memberPublic, fieldSig(fieldType))
		info.Fields = []Handle{fh}
		f.setTypeDef(td, info)

		return mustHash(t, f)
	}

	i4Hash := build(elementI4)
	i8Hash := build(elementI8)
	if i4Hash == i8Hash {
		t.Fatal("changing a value type's field layout did not change the surface hash")
	}
}

func TestHashMethodReturnModeSensitive(t *testing.T) {
	build := func(retType byte) uint64 {
		f := newFakeReader()
		f.assemblyName = f.str("Acme.Widgets")
		td := f.newTypeDef("Acme", "Widget", typePublic)
		mh := f.newMethod("DoIt", memberPublic, methodSig(retType))
		info := f.typeDefInfo[td]
		info.Methods = []Handle{mh}
		f.setTypeDef(td, info)
		return mustHash(t, f)
	}

	voidReturn := build(elementVoid)
	intReturn := build(elementI4)
	if voidReturn == intReturn {
		t.Fatal("changing a method's return type did not change the surface hash")
	}
}
