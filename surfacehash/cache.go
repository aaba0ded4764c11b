// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

// cache is the handle-cache sub-system (§4.2): independent maps keyed by
// handle, valued by u64. Inserts are write-once in effect (invariant 1,
// §3) — nothing in this package overwrites an existing entry with a
// different value once it holds a real (non-placeholder) result.
//
// Recursive computations follow a fixed three-step protocol: check the map
// for an existing value; if absent, pre-store the neutral placeholder
// (Offset) at the handle being computed; compute the real value (a
// self-reference encountered mid-compute now sees the placeholder and
// returns it instead of looping); then overwrite the placeholder with the
// real value.
type cache struct {
	stringHash      map[uint32]uint64
	blobHash        map[uint32]uint64
	entityHash      map[Handle]uint64
	structFieldHash map[Handle]uint64
}

func newCache() *cache {
	return &cache{
		stringHash:      make(map[uint32]uint64),
		blobHash:        make(map[uint32]uint64),
		entityHash:      make(map[Handle]uint64),
		structFieldHash: make(map[Handle]uint64),
	}
}

// getOrComputeString memoizes FromUTF8(s) by heap offset. The nil handle
// (offset 0) always folds to Offset, matching FromUTF8("").
func (c *cache) getOrComputeString(offset uint32, s string) uint64 {
	if h, ok := c.stringHash[offset]; ok {
		return h
	}
	h := FromUTF8(s)
	c.stringHash[offset] = h
	return h
}

// getOrComputeBlob memoizes FromBlob(b) by heap offset, independent of the
// string sub-cache: the same numeric offset addresses unrelated content in
// the two heaps, so sharing one map would collide.
func (c *cache) getOrComputeBlob(offset uint32, b []byte) uint64 {
	if h, ok := c.blobHash[offset]; ok {
		return h
	}
	h := FromBlob(b)
	c.blobHash[offset] = h
	return h
}

// getOrComputeEntity memoizes an entity ("usage") hash. No entity hash in
// this package recurses back into its own handle, so a plain check-compute-
// store suffices; pre-storing is reserved for struct-field hashes.
func (c *cache) getOrComputeEntity(h Handle, compute func() uint64) uint64 {
	if v, ok := c.entityHash[h]; ok {
		return v
	}
	v := compute()
	c.entityHash[h] = v
	return v
}

// preStoreStructField records the neutral placeholder (Offset) at h before
// descending into its instance fields, breaking self-reference (e.g.
// System.Int32 has a field of type Int32).
func (c *cache) preStoreStructField(h Handle) {
	if _, ok := c.structFieldHash[h]; !ok {
		c.structFieldHash[h] = Offset
	}
}

func (c *cache) structFieldValue(h Handle) (uint64, bool) {
	v, ok := c.structFieldHash[h]
	return v, ok
}

func (c *cache) setStructField(h Handle, v uint64) {
	c.structFieldHash[h] = v
}
