// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

import "strings"

// TypeAttributes visibility bits, ECMA-335 §II.23.1.15. Only the
// VisibilityMask values the classifier needs are named here.
const (
	typeVisibilityMask   uint32 = 0x00000007
	typeNotPublic        uint32 = 0x0
	typePublic           uint32 = 0x1
	typeNestedPublic     uint32 = 0x2
	typeNestedFamily     uint32 = 0x4
	typeNestedAssembly   uint32 = 0x5
	typeNestedFamANDAssem uint32 = 0x6
	typeNestedFamORAssem  uint32 = 0x7
)

// FieldAttributes / MethodAttributes share the same MemberAccessMask
// encoding, ECMA-335 §II.23.1.10 / §II.23.1.11.
const (
	memberAccessMask  uint32 = 0x0007
	memberAssembly    uint32 = 0x3
	memberFamily      uint32 = 0x4
	memberFamORAssem  uint32 = 0x5
	memberFamANDAssem uint32 = 0x2
	memberPublic      uint32 = 0x6
)

// classifier decides API-surface membership, gated by a single
// internals_visible boolean per §4.5.
type classifier struct {
	internalsVisible bool
}

// typeInSurface implements the type-definition membership rule. name is the
// type's own (unqualified) name, used only for the compiler-generated
// '<' heuristic.
func (c classifier) typeInSurface(attrs uint32, name string) bool {
	vis := attrs & typeVisibilityMask
	switch vis {
	case typePublic, typeNestedPublic, typeNestedFamily, typeNestedFamORAssem:
		return true
	case typeNotPublic, typeNestedAssembly, typeNestedFamANDAssem:
		if !c.internalsVisible {
			return false
		}
		return !isCompilerGeneratedName(name)
	default:
		return false
	}
}

// memberInSurface implements the method/field membership rule against
// MemberAccessMask.
func (c classifier) memberInSurface(attrs uint32) bool {
	access := attrs & memberAccessMask
	switch access {
	case memberPublic, memberFamily, memberFamORAssem:
		return true
	case memberAssembly, memberFamANDAssem:
		return c.internalsVisible
	default:
		return false
	}
}

// exportedTypeInSurface mirrors the type-definition rule (ExportedType rows
// carry the same TypeAttributes encoding).
func (c classifier) exportedTypeInSurface(attrs uint32, name string) bool {
	return c.typeInSurface(attrs, name)
}

// ManifestResource flag, ECMA-335 §II.23.1.8.
const manifestResourcePublic uint32 = 0x1

// resourceInSurface implements the manifest-resource membership rule:
// the Public flag, plus (for F# signature resources) a name/assembly-name
// match so only the current assembly's own signature data counts.
func (c classifier) resourceInSurface(attrs uint32, name, assemblyName string) bool {
	if attrs&manifestResourcePublic == 0 {
		return false
	}
	for _, prefix := range fsharpSignaturePrefixes {
		if strings.HasPrefix(name, prefix) {
			return strings.HasSuffix(name, assemblyName)
		}
	}
	return true
}

var fsharpSignaturePrefixes = []string{
	"FSharpSignatureInfo.",
	"FSharpSignatureData.",
	"FSharpSignatureCompressedData.",
}

// isCompilerGeneratedName reports whether name is a compiler-generated
// identifier excluded from the surface even under InternalsVisibleTo:
// <Module>, <PrivateImplementationDetails>, C# file-local types of the
// form <Program>F9627…__A, and similar.
func isCompilerGeneratedName(name string) bool {
	return len(name) > 0 && name[0] == '<'
}
