// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "github.com/saferwall/dotnetsurface/log"

// Options configures a single Hasher invocation.
type Options struct {
	// IncludeAllAttributes disables the well-known-type whitelist filter
	// (§4.6) and folds every custom attribute into the surface hash,
	// instead of only the ones the registry recognizes as surface-relevant.
	IncludeAllAttributes bool

	// Logger receives Debug-level notes: the assembly-definition hash and
	// whether internals are visible. Nil disables logging.
	Logger log.Logger
}
