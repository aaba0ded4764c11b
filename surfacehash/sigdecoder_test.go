// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "testing"

// fakeResolver is a trivial typeResolver that returns a distinct hash per
// handle kind/row, enough to tell decoder tests that resolution actually
// happened without needing a real metadata reader.
type fakeResolver struct{}

func (fakeResolver) hashTypeDef(h Handle) uint64 { return Combine2(FromUTF8("typedef"), uint64(h.Row)) }
func (fakeResolver) hashTypeRef(h Handle) uint64 { return Combine2(FromUTF8("typeref"), uint64(h.Row)) }

func encodeCompressedUint(v uint32) []byte {
	switch {
	case v < 0x80:
		return []byte{byte(v)}
	case v < 0x4000:
		return []byte{byte(0x80 | (v >> 8)), byte(v)}
	default:
		return []byte{
			byte(0xc0 | (v >> 24)),
			byte(v >> 16),
			byte(v >> 8),
			byte(v),
		}
	}
}

// encodeToken builds a compressed TypeDefOrRefOrSpec token: tag 0=TypeDef,
// 1=TypeRef, 2=TypeSpec.
func encodeToken(tag, row uint32) []byte {
	return encodeCompressedUint((row << 2) | tag)
}

func TestDecodeFieldSigPrimitive(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	got, err := d.decodeFieldSig([]byte{sigCallField, elementI4})
	if err != nil {
		t.Fatalf("decodeFieldSig: %v", err)
	}
	if got != uint64(elementI4) {
		t.Fatalf("decodeFieldSig(I4) = %d, want %d", got, elementI4)
	}
}

func TestDecodeFieldSigWrongHeader(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	if _, err := d.decodeFieldSig([]byte{sigCallDefault, elementI4}); err == nil {
		t.Fatal("expected an error decoding a FieldSig with a non-FIELD header")
	}
}

func TestDecodeTypePtrByRefPinnedWrap(t *testing.T) {
	d := newSigDecoder(fakeResolver{})

	base, _ := d.decodeType(newBlobReader([]byte{elementI4}))

	ptr, err := d.decodeType(newBlobReader([]byte{elementPtr, elementI4}))
	if err != nil {
		t.Fatalf("decodeType(ptr): %v", err)
	}
	if ptr != Combine2(base, 3) {
		t.Fatal("pointer wrapping did not fold as Combine2(elem, 3)")
	}

	byref, err := d.decodeType(newBlobReader([]byte{elementByRef, elementI4}))
	if err != nil {
		t.Fatalf("decodeType(byref): %v", err)
	}
	if byref != Combine2(base, 2) {
		t.Fatal("byref wrapping did not fold as Combine2(elem, 2)")
	}
	if byref == ptr {
		t.Fatal("byref and pointer wrapping of the same element must differ")
	}
}

func TestDecodeTypeSZArray(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	base, _ := d.decodeType(newBlobReader([]byte{elementString}))
	sz, err := d.decodeType(newBlobReader([]byte{elementSZArray, elementString}))
	if err != nil {
		t.Fatalf("decodeType(szarray): %v", err)
	}
	if sz != Combine2(base, 1) {
		t.Fatal("SZArray wrapping did not fold as Combine2(elem, 1)")
	}
}

func TestDecodeTypeClassResolvesViaResolver(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	blob := append([]byte{elementClass}, encodeToken(0, 7)...) // TypeDef row 7
	got, err := d.decodeType(newBlobReader(blob))
	if err != nil {
		t.Fatalf("decodeType(class): %v", err)
	}
	want := fakeResolver{}.hashTypeDef(Handle{Kind: KindTypeDefinition, Row: 7})
	if got != want {
		t.Fatal("Class element did not resolve through the injected typeResolver")
	}
}

func TestDecodeTypeValueTypeRejectsTypeSpec(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	blob := append([]byte{elementValueType}, encodeToken(2, 1)...) // TypeSpec row 1
	if _, err := d.decodeType(newBlobReader(blob)); err == nil {
		t.Fatal("a TypeSpec token after ValueType should be rejected")
	}
}

func TestDecodeGenericInst(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	blob := []byte{elementGenericInst, elementClass}
	blob = append(blob, encodeToken(0, 3)...) // generic TypeDef row 3
	blob = append(blob, encodeCompressedUint(2)...)
	blob = append(blob, elementI4, elementString)

	got, err := d.decodeGenericInst(newBlobReader(blob[1:]))
	if err != nil {
		t.Fatalf("decodeGenericInst: %v", err)
	}
	genHash := fakeResolver{}.hashTypeDef(Handle{Kind: KindTypeDefinition, Row: 3})
	argSeq := CombineSeq([]uint64{uint64(elementI4), uint64(elementString)})
	want := Combine2(genHash, argSeq)
	if got != want {
		t.Fatal("GenericInst did not fold as Combine2(genericTypeHash, CombineSeq(argHashes))")
	}
}

func TestDecodeGenericInstZeroArgsRejected(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	blob := []byte{elementClass}
	blob = append(blob, encodeToken(0, 1)...)
	blob = append(blob, encodeCompressedUint(0)...)
	if _, err := d.decodeGenericInst(newBlobReader(blob)); err == nil {
		t.Fatal("GenericInst with zero type arguments should be rejected")
	}
}

func TestDecodeVarAndMVarDistinctByPosition(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	var0, _ := d.decodeType(newBlobReader(append([]byte{elementVar}, encodeCompressedUint(0)...)))
	var1, _ := d.decodeType(newBlobReader(append([]byte{elementVar}, encodeCompressedUint(1)...)))
	mvar0, _ := d.decodeType(newBlobReader(append([]byte{elementMVar}, encodeCompressedUint(0)...)))

	if var0 == var1 {
		t.Fatal("generic type-parameter positions 0 and 1 must hash differently")
	}
	if var0 == mvar0 {
		t.Fatal("a type-parameter Var and a method-parameter MVar at the same position must hash differently")
	}
}

func TestDecodeMethodSigFoldsParamsThenReturn(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	// default calling convention, 2 params (I4, String), returns Boolean.
	blob := []byte{sigCallDefault, 0x02, elementBoolean, elementI4, elementString}
	sigHash, genCount, err := d.decodeMethodSig(blob)
	if err != nil {
		t.Fatalf("decodeMethodSig: %v", err)
	}
	if genCount != 0 {
		t.Fatalf("genCount = %d, want 0 for a non-generic method", genCount)
	}
	want := Combine2(CombineSeq([]uint64{uint64(elementI4), uint64(elementString)}), uint64(elementBoolean))
	if sigHash != want {
		t.Fatal("decodeMethodSig did not fold as Combine2(CombineSeq(paramHashes), returnHash)")
	}
}

func TestDecodeMethodSigGenericParamCount(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	blob := []byte{sigCallDefault | sigGenericFlag, 0x02, 0x00, elementVoid}
	_, genCount, err := d.decodeMethodSig(blob)
	if err != nil {
		t.Fatalf("decodeMethodSig: %v", err)
	}
	if genCount != 2 {
		t.Fatalf("genCount = %d, want 2", genCount)
	}
}

func TestDecodeMethodSigParamOrderSensitive(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	forward := []byte{sigCallDefault, 0x02, elementVoid, elementI4, elementString}
	reversed := []byte{sigCallDefault, 0x02, elementVoid, elementString, elementI4}

	fHash, _, _ := d.decodeMethodSig(forward)
	rHash, _, _ := d.decodeMethodSig(reversed)
	if fHash == rHash {
		t.Fatal("parameter order must affect a method signature's hash")
	}
}

func TestDecodeArrayFoldsRankAndBounds(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	blob := []byte{elementI4}
	blob = append(blob, encodeCompressedUint(2)...) // rank 2
	blob = append(blob, encodeCompressedUint(0)...) // 0 sizes
	blob = append(blob, encodeCompressedUint(0)...) // 0 lower bounds

	got, err := d.decodeArray(newBlobReader(blob))
	if err != nil {
		t.Fatalf("decodeArray: %v", err)
	}
	want := Combine4(uint64(elementI4), 2, CombineSeq(nil), CombineSeq(nil))
	if got != want {
		t.Fatal("decodeArray did not fold as Combine4(elem, rank, loBoundsSeq, sizesSeq)")
	}
}

func TestDecodeTypeSpecSigSingleElement(t *testing.T) {
	d := newSigDecoder(fakeResolver{})
	got, err := d.decodeTypeSpecSig([]byte{elementI8})
	if err != nil {
		t.Fatalf("decodeTypeSpecSig: %v", err)
	}
	if got != uint64(elementI8) {
		t.Fatalf("decodeTypeSpecSig(I8) = %d, want %d", got, elementI8)
	}
}
