// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "testing"

func TestTypeInSurfacePublic(t *testing.T) {
	c := classifier{}
	if !c.typeInSurface(typePublic, "Widget") {
		t.Fatal("a public type should be in surface")
	}
	if !c.typeInSurface(typeNestedPublic, "Widget") {
		t.Fatal("a nested public type should be in surface")
	}
}

func TestTypeInSurfaceInternalWithoutIVT(t *testing.T) {
	c := classifier{internalsVisible: false}
	if c.typeInSurface(typeNotPublic, "Widget") {
		t.Fatal("an internal type should be excluded without InternalsVisibleTo")
	}
}

func TestTypeInSurfaceInternalWithIVT(t *testing.T) {
	c := classifier{internalsVisible: true}
	if !c.typeInSurface(typeNotPublic, "Widget") {
		t.Fatal("an internal type should be included once InternalsVisibleTo is detected")
	}
}

func TestTypeInSurfaceCompilerGeneratedAlwaysExcluded(t *testing.T) {
	c := classifier{internalsVisible: true}
	if c.typeInSurface(typeNotPublic, "<Module>") {
		t.Fatal("compiler-generated names must stay excluded even with InternalsVisibleTo")
	}
	if c.typeInSurface(typeNotPublic, "<PrivateImplementationDetails>") {
		t.Fatal("compiler-generated names must stay excluded even with InternalsVisibleTo")
	}
}

func TestMemberInSurface(t *testing.T) {
	pub := classifier{}
	if !pub.memberInSurface(memberPublic) {
		t.Fatal("a public member should be in surface")
	}
	if !pub.memberInSurface(memberFamily) {
		t.Fatal("a protected (family) member should be in surface")
	}
	if pub.memberInSurface(memberAssembly) {
		t.Fatal("an internal member should be excluded without InternalsVisibleTo")
	}

	ivt := classifier{internalsVisible: true}
	if !ivt.memberInSurface(memberAssembly) {
		t.Fatal("an internal member should be included once InternalsVisibleTo is detected")
	}
	if !ivt.memberInSurface(memberFamANDAssem) {
		t.Fatal("a family-and-assembly member should be included once InternalsVisibleTo is detected")
	}
}

func TestResourceInSurface(t *testing.T) {
	c := classifier{}
	if c.resourceInSurface(0x0, "Data.resources", "Acme") {
		t.Fatal("a non-public resource should be excluded")
	}
	if !c.resourceInSurface(manifestResourcePublic, "Data.resources", "Acme") {
		t.Fatal("a public, non-F#-signature resource should be included")
	}
}

func TestResourceInSurfaceFSharpSignature(t *testing.T) {
	c := classifier{}
	if !c.resourceInSurface(manifestResourcePublic, "FSharpSignatureData.Acme", "Acme") {
		t.Fatal("an F# signature resource matching the assembly name should be included")
	}
	if c.resourceInSurface(manifestResourcePublic, "FSharpSignatureData.Other", "Acme") {
		t.Fatal("an F# signature resource for a different assembly should be excluded")
	}
}

func TestIsCompilerGeneratedName(t *testing.T) {
	cases := map[string]bool{
		"Widget":  false,
		"":        false,
		"<Foo>":   true,
		"<Module>": true,
	}
	for name, want := range cases {
		if got := isCompilerGeneratedName(name); got != want {
			t.Errorf("isCompilerGeneratedName(%q) = %v, want %v", name, got, want)
		}
	}
}
