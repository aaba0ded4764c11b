// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "testing"

func TestFromUTF8Empty(t *testing.T) {
	if got := FromUTF8(""); got != Offset {
		t.Fatalf("FromUTF8(\"\") = %d, want Offset %d", got, Offset)
	}
}

func TestFromUTF8Deterministic(t *testing.T) {
	a := FromUTF8("Acme.Widget")
	b := FromUTF8("Acme.Widget")
	if a != b {
		t.Fatal("FromUTF8 is not deterministic for identical input")
	}
	if a == FromUTF8("Acme.Widgets") {
		t.Fatal("distinct strings hashed to the same value")
	}
}

func TestFromBlobMatchesFromUTF8(t *testing.T) {
	s := "hello"
	if FromBlob([]byte(s)) != FromUTF8(s) {
		t.Fatal("FromBlob and FromUTF8 should fold identically for the same bytes")
	}
}

func TestCombineNotCommutative(t *testing.T) {
	a, b := FromUTF8("a"), FromUTF8("b")
	if Combine2(a, b) == Combine2(b, a) {
		t.Fatal("Combine2 should be order-sensitive")
	}
}

func TestCombineNestsLeftFold(t *testing.T) {
	a, b, c := FromUTF8("a"), FromUTF8("b"), FromUTF8("c")
	if Combine3(a, b, c) != Combine2(Combine2(a, b), c) {
		t.Fatal("Combine3 should equal nested Combine2 calls, left to right")
	}
	d := FromUTF8("d")
	if Combine4(a, b, c, d) != Combine2(Combine3(a, b, c), d) {
		t.Fatal("Combine4 should extend Combine3 with one more left fold")
	}
}

func TestCombineSeqStartsFromOffset(t *testing.T) {
	x := FromUTF8("x")
	if CombineSeq([]uint64{x}) != mix(Offset, x) {
		t.Fatal("CombineSeq of a single element should fold once from Offset")
	}
	if CombineSeq(nil) != Offset {
		t.Fatal("CombineSeq of no elements should be Offset")
	}
}

func TestCombineSeqOrderSensitive(t *testing.T) {
	a, b := FromUTF8("a"), FromUTF8("b")
	forward := CombineSeq([]uint64{a, b})
	reversed := CombineSeq([]uint64{b, a})
	if forward == reversed {
		t.Fatal("CombineSeq must be order-sensitive for positional sequences")
	}
}

func TestSortedCombineSeqOrderIndependent(t *testing.T) {
	a, b, c := FromUTF8("a"), FromUTF8("b"), FromUTF8("c")
	x := SortedCombineSeq([]uint64{a, b, c})
	y := SortedCombineSeq([]uint64{c, a, b})
	z := SortedCombineSeq([]uint64{b, c, a})
	if x != y || y != z {
		t.Fatal("SortedCombineSeq must be invariant to input order")
	}
}

func TestSortedCombineSeqEmpty(t *testing.T) {
	if got := SortedCombineSeq(nil); got != Offset {
		t.Fatalf("SortedCombineSeq(nil) = %d, want Offset %d", got, Offset)
	}
}
