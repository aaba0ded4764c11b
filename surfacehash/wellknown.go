// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package surfacehash

var (
	hashCompilerServicesNamespace = FromUTF8("System.Runtime.CompilerServices")
	hashSystemNamespace           = FromUTF8("System")
	hashCodeAnalysisNamespace     = FromUTF8("System.Diagnostics.CodeAnalysis")
)

// wellKnownTypes is populated lazily as a side effect of resolving type
// references and type-definition usages during traversal (§4.6). The hash
// comparison against the namespace constants above is a quick filter; a
// full string comparison always follows it to avoid a hash collision
// silently misclassifying a type.
type wellKnownTypes struct {
	ignoredAttributeTypes  map[Handle]bool
	includedAttributeTypes map[Handle]bool
	valueTypeHandle        Handle
	haveValueType          bool
}

func newWellKnownTypes() *wellKnownTypes {
	return &wellKnownTypes{
		ignoredAttributeTypes:  make(map[Handle]bool),
		includedAttributeTypes: make(map[Handle]bool),
	}
}

// observe classifies handle by its namespace/name strings as a candidate
// well-known type. It runs when a usage hash is first resolved and each time
// an attribute's owner type is filtered, so it can see the same handle more
// than once; repeat calls record the same result.
func (w *wellKnownTypes) observe(handle Handle, namespace, name string) {
	switch {
	case FromUTF8(namespace) == hashCompilerServicesNamespace && namespace == "System.Runtime.CompilerServices":
		if name == "CompilerGeneratedAttribute" {
			w.ignoredAttributeTypes[handle] = true
		} else {
			w.includedAttributeTypes[handle] = true
		}
	case FromUTF8(namespace) == hashSystemNamespace && namespace == "System":
		switch name {
		case "ValueType":
			if !w.haveValueType {
				w.valueTypeHandle = handle
				w.haveValueType = true
			}
		case "ObsoleteAttribute", "AttributeUsageAttribute", "FlagsAttribute", "ParamArrayAttribute":
			w.includedAttributeTypes[handle] = true
		}
	case FromUTF8(namespace) == hashCodeAnalysisNamespace && namespace == "System.Diagnostics.CodeAnalysis":
		w.includedAttributeTypes[handle] = true
	}
}

// isIgnoredAttribute reports whether attributes of this type are stripped
// from the surface hash (only CompilerGeneratedAttribute, per §4.6).
func (w *wellKnownTypes) isIgnoredAttribute(handle Handle) bool {
	return w.ignoredAttributeTypes[handle]
}

// isValueType reports whether handle is the System.ValueType definition
// observed so far this invocation.
func (w *wellKnownTypes) isValueType(handle Handle) bool {
	return w.haveValueType && w.valueTypeHandle == handle
}
