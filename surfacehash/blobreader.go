// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// blobReader walks a signature or custom-attribute blob byte-by-byte. It
// never materializes an intermediate tree; callers pull exactly the bytes
// the current element needs.
type blobReader struct {
	data []byte
	pos  int
}

func newBlobReader(data []byte) *blobReader {
	return &blobReader{data: data}
}

func (r *blobReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *blobReader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, badImage("signature blob truncated")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *blobReader) readBytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, badImage("signature blob truncated")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// readCompressedUint decodes the ECMA-335 §II.23.2 compressed unsigned
// integer encoding: 1, 2, or 4 bytes depending on the leading bit pattern.
func (r *blobReader) readCompressedUint() (uint32, error) {
	b0, err := r.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case b0&0x80 == 0:
		return uint32(b0), nil
	case b0&0xc0 == 0x80:
		b1, err := r.readByte()
		if err != nil {
			return 0, err
		}
		return (uint32(b0&0x3f) << 8) | uint32(b1), nil
	case b0&0xe0 == 0xc0:
		rest, err := r.readBytes(3)
		if err != nil {
			return 0, err
		}
		return (uint32(b0&0x1f) << 24) | (uint32(rest[0]) << 16) | (uint32(rest[1]) << 8) | uint32(rest[2]), nil
	default:
		return 0, badImage("invalid compressed unsigned integer")
	}
}

// readCompressedInt decodes the ECMA-335 §II.23.2 compressed signed integer
// encoding, used for array lower bounds. The value is first decompressed
// as if unsigned, then the low bit is interpreted as a sign flag and the
// remainder is rotated right by one.
func (r *blobReader) readCompressedInt() (int32, error) {
	start := r.pos
	u, err := r.readCompressedUint()
	if err != nil {
		return 0, err
	}
	negative := u&1 != 0
	u >>= 1
	if negative {
		switch r.pos - start {
		case 1:
			u |= 0xffffffc0
		case 2:
			u |= 0xffffe000
		default:
			u |= 0xf0000000
		}
	}
	return int32(u), nil
}

// readCompressedToken decodes a compressed TypeDefOrRefOrSpec token per
// §II.23.2.8: the low 2 bits select the table (0=TypeDef, 1=TypeRef,
// 2=TypeSpec), the rest (after a further compressed-uint decompress of the
// whole value) is the 1-based row number.
func (r *blobReader) readCompressedToken() (Handle, error) {
	u, err := r.readCompressedUint()
	if err != nil {
		return Handle{}, err
	}
	tag := u & 0x3
	row := u >> 2
	var kind HandleKind
	switch tag {
	case 0:
		kind = KindTypeDefinition
	case 1:
		kind = KindTypeReference
	case 2:
		kind = KindTypeSpecification
	default:
		return Handle{}, badImage("invalid TypeDefOrRefOrSpec tag in signature")
	}
	return Handle{Kind: kind, Row: row}, nil
}
