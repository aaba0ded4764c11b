// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import (
	"errors"
	"fmt"
)

// ErrBadImage is the sentinel every BadImageError wraps, so callers can test
// with errors.Is(err, surfacehash.ErrBadImage) regardless of the specific
// reason.
var ErrBadImage = errors.New("malformed managed image")

// BadImageError reports metadata that violates ECMA-335 in a way that makes
// a deterministic surface hash impossible to compute: an out-of-range
// signature element code, a type spec where the grammar disallows one, an
// empty type argument list in a GenericInst signature, a wrong signature
// header kind, or a well-known row (assembly definition, CLR header)
// missing entirely. It is the only error surfacehash returns; there is no
// partial result and no recovery.
type BadImageError struct {
	Reason string
	Handle Handle
}

func (e *BadImageError) Error() string {
	if e.Handle.IsNil() {
		return fmt.Sprintf("surfacehash: %s", e.Reason)
	}
	return fmt.Sprintf("surfacehash: %s (handle kind=%d row=%d)", e.Reason, e.Handle.Kind, e.Handle.Row)
}

func (e *BadImageError) Unwrap() error {
	return ErrBadImage
}

func badImage(reason string) error {
	return &BadImageError{Reason: reason}
}

func badImageAt(reason string, h Handle) error {
	return &BadImageError{Reason: reason, Handle: h}
}
