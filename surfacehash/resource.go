// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "crypto/md5"

// hashResourceDigest computes the §4.7 step-6 resource content digest: an
// MD5 sum of the resource body, folded into a u64 via FromBlob. MD5 is
// used purely as a fast, collision-resistant content fingerprint inside an
// already-non-cryptographic hash pipeline, not for any integrity guarantee
// — the standard library's crypto/md5 is the right tool here precisely
// because nothing else in the surface vocabulary needs a keyed or
// collision-hardened digest, and pulling in a third-party hash package for
// a single sum call would add a dependency no other component shares.
func hashResourceDigest(data []byte) uint64 {
	sum := md5.Sum(data)
	return FromBlob(sum[:])
}
