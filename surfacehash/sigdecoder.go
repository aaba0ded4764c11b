// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// ECMA-335 §II.23.1.16 element type codes relevant to signature decoding.
const (
	elementEnd         = 0x00
	elementVoid        = 0x01
	elementBoolean     = 0x02
	elementChar        = 0x03
	elementI1          = 0x04
	elementU1          = 0x05
	elementI2          = 0x06
	elementU2          = 0x07
	elementI4          = 0x08
	elementU4          = 0x09
	elementI8          = 0x0a
	elementU8          = 0x0b
	elementR4          = 0x0c
	elementR8          = 0x0d
	elementString      = 0x0e
	elementPtr         = 0x0f
	elementByRef       = 0x10
	elementValueType   = 0x11
	elementClass       = 0x12
	elementVar         = 0x13
	elementArray       = 0x14
	elementGenericInst = 0x15
	elementTypedByRef  = 0x16
	elementI           = 0x18
	elementU           = 0x19
	elementFnPtr       = 0x1b
	elementObject      = 0x1c
	elementSZArray     = 0x1d
	elementMVar        = 0x1e
	elementCModReqd    = 0x1f
	elementCModOpt     = 0x20
	elementSentinel    = 0x41
	elementPinned      = 0x45
)

// signature header kinds, ECMA-335 §II.23.2.1.
const (
	sigFlagHasThis      = 0x20
	sigFlagExplicitThis = 0x40
	sigCallingConvMask  = 0x0f
	sigCallDefault      = 0x00
	sigCallVararg       = 0x05
	sigCallField        = 0x06
	sigCallLocalVar     = 0x07
	sigCallProperty     = 0x08
	sigCallGeneric      = 0x10
	sigGenericFlag      = 0x10
)

// typeResolver is the injected collaborator a signature decoder calls into
// whenever it reaches a Class/ValueType typedef-or-ref element (§9: "a
// monomorphized visitor" — two hooks, no further dynamic dispatch needed
// for any other signature element since the rest have closed semantics).
type typeResolver interface {
	hashTypeDef(h Handle) uint64
	hashTypeRef(h Handle) uint64
}

// sigDecoder decodes ECMA-335 §II.23.2 blobs into a single u64 without
// building an intermediate AST. One instance is reused across a whole
// traversal; it carries no per-decode state beyond the blobReader handed
// to each Decode call.
type sigDecoder struct {
	resolver typeResolver
}

func newSigDecoder(resolver typeResolver) *sigDecoder {
	return &sigDecoder{resolver: resolver}
}

// resolveTypeToken resolves a Class/ValueType token reached outside a
// TypeSpec blob. A TypeSpec never appears here: field, method, and
// type-spec signatures (the only blob kinds this decoder parses) all
// forbid it directly after a Class/ValueType tag per ECMA-335 §II.23.2.12.
func (d *sigDecoder) resolveTypeToken(tok Handle) (uint64, error) {
	switch tok.Kind {
	case KindTypeDefinition:
		return d.resolver.hashTypeDef(tok), nil
	case KindTypeReference:
		return d.resolver.hashTypeRef(tok), nil
	default:
		return 0, badImageAt("unresolvable type token in signature", tok)
	}
}

// decodeType decodes one signature type element.
func (d *sigDecoder) decodeType(r *blobReader) (uint64, error) {
	code, err := r.readByte()
	if err != nil {
		return 0, err
	}

	switch code {
	case elementBoolean, elementChar, elementI1, elementU1, elementI2, elementU2,
		elementI4, elementU4, elementI8, elementU8, elementR4, elementR8,
		elementI, elementU, elementObject, elementString, elementVoid, elementTypedByRef:
		return uint64(code), nil

	case elementPtr:
		t, err := d.decodeType(r)
		if err != nil {
			return 0, err
		}
		return Combine2(t, 3), nil

	case elementByRef:
		t, err := d.decodeType(r)
		if err != nil {
			return 0, err
		}
		return Combine2(t, 2), nil

	case elementPinned:
		t, err := d.decodeType(r)
		if err != nil {
			return 0, err
		}
		return Combine2(t, 4), nil

	case elementSZArray:
		t, err := d.decodeType(r)
		if err != nil {
			return 0, err
		}
		return Combine2(t, 1), nil

	case elementArray:
		return d.decodeArray(r)

	case elementGenericInst:
		return d.decodeGenericInst(r)

	case elementVar:
		idx, err := r.readCompressedUint()
		if err != nil {
			return 0, err
		}
		return Combine2(uint64(idx), 1000), nil

	case elementMVar:
		idx, err := r.readCompressedUint()
		if err != nil {
			return 0, err
		}
		return Combine2(uint64(idx), 1000000), nil

	case elementCModReqd, elementCModOpt:
		return d.decodeModified(r, code)

	case elementFnPtr:
		return d.decodeFnPtr(r)

	case elementClass, elementValueType:
		tok, err := r.readCompressedToken()
		if err != nil {
			return 0, err
		}
		return d.resolveTypeToken(tok)

	default:
		return 0, badImage("signature type element code out of range")
	}
}

func (d *sigDecoder) decodeModified(r *blobReader, modCode byte) (uint64, error) {
	modTok, err := r.readCompressedToken()
	if err != nil {
		return 0, err
	}
	modHash, err := d.resolveTypeToken(modTok)
	if err != nil {
		return 0, err
	}
	underlying, err := d.decodeType(r)
	if err != nil {
		return 0, err
	}
	isRequired := uint64(0)
	if modCode == elementCModReqd {
		isRequired = 42
	}
	return Combine3(underlying, modHash, isRequired), nil
}

func (d *sigDecoder) decodeArray(r *blobReader) (uint64, error) {
	elem, err := d.decodeType(r)
	if err != nil {
		return 0, err
	}
	rank, err := r.readCompressedUint()
	if err != nil {
		return 0, err
	}

	numSizes, err := r.readCompressedUint()
	if err != nil {
		return 0, err
	}
	sizes := make([]uint64, numSizes)
	for i := range sizes {
		s, err := r.readCompressedUint()
		if err != nil {
			return 0, err
		}
		sizes[i] = uint64(s)
	}

	numLoBounds, err := r.readCompressedUint()
	if err != nil {
		return 0, err
	}
	loBounds := make([]uint64, numLoBounds)
	for i := range loBounds {
		lo, err := r.readCompressedInt()
		if err != nil {
			return 0, err
		}
		loBounds[i] = uint64(int64(lo))
	}

	return Combine4(elem, uint64(rank), CombineSeq(loBounds), CombineSeq(sizes)), nil
}

func (d *sigDecoder) decodeGenericInst(r *blobReader) (uint64, error) {
	kind, err := r.readByte()
	if err != nil {
		return 0, err
	}
	if kind != elementClass && kind != elementValueType {
		return 0, badImage("GenericInst must be followed by Class or ValueType")
	}
	tok, err := r.readCompressedToken()
	if err != nil {
		return 0, err
	}
	genericHash, err := d.resolveTypeToken(tok)
	if err != nil {
		return 0, err
	}

	argCount, err := r.readCompressedUint()
	if err != nil {
		return 0, err
	}
	if argCount == 0 {
		return 0, badImage("GenericInst with zero type arguments")
	}
	argHashes := make([]uint64, argCount)
	for i := range argHashes {
		h, err := d.decodeType(r)
		if err != nil {
			return 0, err
		}
		argHashes[i] = h
	}
	return Combine2(genericHash, CombineSeq(argHashes)), nil
}

func (d *sigDecoder) decodeFnPtr(r *blobReader) (uint64, error) {
	header, err := r.readByte()
	if err != nil {
		return 0, err
	}
	genericParamCount := uint64(0)
	if header&sigGenericFlag != 0 {
		n, err := r.readCompressedUint()
		if err != nil {
			return 0, err
		}
		genericParamCount = uint64(n)
	}

	paramCount, err := r.readCompressedUint()
	if err != nil {
		return 0, err
	}
	retHash, err := d.decodeType(r)
	if err != nil {
		return 0, err
	}

	paramHashes := make([]uint64, 0, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		code, err := r.peekByte()
		if err == nil && code == elementSentinel {
			r.pos++
			continue
		}
		h, err := d.decodeType(r)
		if err != nil {
			return 0, err
		}
		paramHashes = append(paramHashes, h)
	}

	return Combine4(retHash, CombineSeq(paramHashes), genericParamCount, uint64(header&sigCallingConvMask)), nil
}

func (r *blobReader) peekByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, badImage("signature blob truncated")
	}
	return r.data[r.pos], nil
}

// decodeMethodSig decodes a full MethodDefSig/MethodRefSig (header
// 0x00/0x05/0x10/0x20/0x40 combinations) into the per-signature hash plus
// the generic-parameter count (needed separately by member-identity hashes,
// §4.8). The resulting signature hash is combine(combine_seq(param_hashes),
// return_hash); callers that need member identity additionally fold in the
// generic-parameter count themselves.
func (d *sigDecoder) decodeMethodSig(data []byte) (sigHash uint64, genericParamCount uint32, err error) {
	r := newBlobReader(data)
	header, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}

	if header&sigGenericFlag != 0 {
		genericParamCount, err = r.readCompressedUint()
		if err != nil {
			return 0, 0, err
		}
	}

	paramCount, err := r.readCompressedUint()
	if err != nil {
		return 0, 0, err
	}

	retHash, err := d.decodeType(r)
	if err != nil {
		return 0, 0, err
	}

	paramHashes := make([]uint64, 0, paramCount)
	for i := uint32(0); i < paramCount; i++ {
		code, peekErr := r.peekByte()
		if peekErr == nil && code == elementSentinel {
			r.pos++
		}
		h, err := d.decodeType(r)
		if err != nil {
			return 0, 0, err
		}
		paramHashes = append(paramHashes, h)
	}

	return Combine2(CombineSeq(paramHashes), retHash), genericParamCount, nil
}

// decodeFieldSig decodes a FieldSig (header 0x06) into its type hash.
func (d *sigDecoder) decodeFieldSig(data []byte) (uint64, error) {
	r := newBlobReader(data)
	header, err := r.readByte()
	if err != nil {
		return 0, err
	}
	if header != sigCallField {
		return 0, badImage("wrong signature header kind for FieldSig")
	}
	return d.decodeType(r)
}

// decodeTypeSpecSig decodes a TypeSpec blob (just one Type element, no
// header byte) into its content hash.
func (d *sigDecoder) decodeTypeSpecSig(data []byte) (uint64, error) {
	r := newBlobReader(data)
	return d.decodeType(r)
}
