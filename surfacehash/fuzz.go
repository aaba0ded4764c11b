// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import (
	pe "github.com/saferwall/dotnetsurface"
)

// Fuzz exercises the full FromPE + Hasher pipeline against arbitrary input,
// the same shape as the underlying pe package's own fuzz entrypoint: parse,
// adapt, hash, and report whether a managed image made it all the way
// through without panicking.
func Fuzz(data []byte) int {
	f, err := pe.NewBytes(data, &pe.Options{Fast: false, SectionEntropy: false})
	if err != nil {
		return 0
	}
	if err := f.Parse(); err != nil {
		return 0
	}

	reader, err := FromPE(f)
	if err != nil {
		return 0
	}

	if _, err := New(reader, Options{}).Hash(); err != nil {
		return 0
	}
	return 1
}
