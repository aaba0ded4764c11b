// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// customAttrProlog is the fixed two-byte prolog (§II.23.3) every
// CustomAttribute blob begins with.
const customAttrProlog = 0x0001

// hashCustomAttributeBlob folds a CustomAttribute row's raw value blob
// directly into a u64 (§4.4). The blob's fixed-argument and named-argument
// shape already depends on the constructor's signature, and the
// constructor's owner type and the attribute's parent are both hashed
// separately as entity usages elsewhere; re-parsing the blob into typed
// argument values here would only reproduce information already carried by
// those two hashes plus the raw bytes, so folding the bytes directly is
// both sufficient and exact. A blob with no arguments beyond the prolog
// still folds its two prolog bytes, so the encoding is never confused with
// "no custom attribute at all". A zero-length blob folds no bytes.
func hashCustomAttributeBlob(blob []byte) uint64 {
	return FromBlob(blob)
}

// validateCustomAttributeProlog reports a malformed blob if present but
// missing the mandatory 0x0001 prolog. Absent blobs (zero length) are
// tolerated: some tools emit CustomAttribute rows with an empty Value for
// attributes with no constructor or a no-argument constructor's minimal
// encoding.
func validateCustomAttributeProlog(h Handle, blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	if len(blob) < 2 {
		return badImageAt("custom attribute blob shorter than its prolog", h)
	}
	prolog := uint16(blob[0]) | uint16(blob[1])<<8
	if prolog != customAttrProlog {
		return badImageAt("custom attribute blob missing 0x0001 prolog", h)
	}
	return nil
}
