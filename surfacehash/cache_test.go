// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "testing"

func TestCacheStringMemoizes(t *testing.T) {
	c := newCache()
	first := c.getOrComputeString(1, "Widget")
	if got := c.getOrComputeString(1, "DIFFERENT"); got != first {
		t.Fatal("getOrComputeString recomputed instead of returning the memoized value for the same offset")
	}
	if FromUTF8("Widget") != first {
		t.Fatal("memoized string hash should match a direct FromUTF8 call")
	}
}

func TestCacheStringAndBlobIndependent(t *testing.T) {
	c := newCache()
	sh := c.getOrComputeString(5, "x")
	bh := c.getOrComputeBlob(5, []byte{0xff})
	if sh == bh {
		t.Fatal("string and blob caches should not collide on a shared numeric offset")
	}
}

func TestCacheEntityMemoizes(t *testing.T) {
	c := newCache()
	h := Handle{Kind: KindTypeDefinition, Row: 1}
	calls := 0
	compute := func() uint64 {
		calls++
		return 42
	}
	if v := c.getOrComputeEntity(h, compute); v != 42 {
		t.Fatalf("getOrComputeEntity = %d, want 42", v)
	}
	if v := c.getOrComputeEntity(h, compute); v != 42 {
		t.Fatalf("getOrComputeEntity (cached) = %d, want 42", v)
	}
	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}
}

func TestCacheStructFieldPreStoreBreaksRecursion(t *testing.T) {
	c := newCache()
	h := Handle{Kind: KindTypeDefinition, Row: 1}

	if _, ok := c.structFieldValue(h); ok {
		t.Fatal("struct field value should be absent before pre-store")
	}

	c.preStoreStructField(h)
	v, ok := c.structFieldValue(h)
	if !ok || v != Offset {
		t.Fatalf("pre-stored struct field value = (%d, %v), want (%d, true)", v, ok, Offset)
	}

	c.setStructField(h, 99)
	v, ok = c.structFieldValue(h)
	if !ok || v != 99 {
		t.Fatalf("struct field value after overwrite = (%d, %v), want (99, true)", v, ok)
	}
}

func TestCachePreStoreDoesNotClobberRealValue(t *testing.T) {
	c := newCache()
	h := Handle{Kind: KindTypeDefinition, Row: 1}
	c.setStructField(h, 7)
	c.preStoreStructField(h)
	v, _ := c.structFieldValue(h)
	if v != 7 {
		t.Fatalf("preStoreStructField overwrote an existing value: got %d, want 7", v)
	}
}
