package locator

import (
	"reflect"
	"strconv"
	"strings"
)

// TypeName returns the canonical name of the type parameter T, which is the
// key a service registered without an explicit name is stored under.
//
// Named types are qualified with their full package path, so two types named
// "Client" in different packages never collide. The result never depends on
// addresses or other per-process identifiers.
//
// Unnamed structs and interfaces are spelled out member by member with the
// same qualification, unlike reflect's String which uses short package names.
//
//	locator.TypeName[int]()                     // "int"
//	locator.TypeName[*http.Client]()            // "*net/http.Client"
//	locator.TypeName[map[string][]byte]()       // "map[string][]uint8"
//	locator.TypeName[struct{ C http.Client }]() // "struct { C net/http.Client }"
func TypeName[T any]() string {
	return canonicalTypeName(reflect.TypeFor[T]())
}

// KeyFor returns the registry key for type T and an optional name. A non-empty
// name always wins over the type-derived key.
func KeyFor[T any](name string) string {
	if name != "" {
		return name
	}
	return TypeName[T]()
}

func canonicalTypeName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			// predeclared: int, string, error
			return t.String()
		}
		return qualifiedName(t)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + canonicalTypeName(t.Elem())
	case reflect.Slice:
		return "[]" + canonicalTypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + canonicalTypeName(t.Elem())
	case reflect.Map:
		return "map[" + canonicalTypeName(t.Key()) + "]" + canonicalTypeName(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + canonicalTypeName(t.Elem())
		case reflect.SendDir:
			return "chan<- " + canonicalTypeName(t.Elem())
		default:
			return "chan " + canonicalTypeName(t.Elem())
		}
	case reflect.Func:
		return "func" + signature(t)
	case reflect.Struct:
		return structTypeName(t)
	case reflect.Interface:
		return interfaceTypeName(t)
	default:
		return t.String()
	}
}

// qualifiedName renders pkgpath.Name. Instantiated generic types already carry
// the full import path of each type argument inside Name(), so it is kept as is.
func qualifiedName(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}

// memberName qualifies unexported field and method names with their package,
// since those identifiers are distinct per package.
func memberName(name, pkgPath string) string {
	if pkgPath == "" {
		return name
	}
	return pkgPath + "." + name
}

func structTypeName(t reflect.Type) string {
	if t.NumField() == 0 {
		return "struct {}"
	}

	var b strings.Builder
	b.WriteString("struct { ")
	for i := 0; i < t.NumField(); i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		f := t.Field(i)
		if !f.Anonymous {
			b.WriteString(memberName(f.Name, f.PkgPath))
			b.WriteString(" ")
		}
		b.WriteString(canonicalTypeName(f.Type))
		if f.Tag != "" {
			b.WriteString(" ")
			b.WriteString(strconv.Quote(string(f.Tag)))
		}
	}
	b.WriteString(" }")
	return b.String()
}

// interfaceTypeName lists the method set, which reflect keeps sorted by name.
func interfaceTypeName(t reflect.Type) string {
	if t.NumMethod() == 0 {
		return "interface {}"
	}

	var b strings.Builder
	b.WriteString("interface { ")
	for i := 0; i < t.NumMethod(); i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		m := t.Method(i)
		b.WriteString(memberName(m.Name, m.PkgPath))
		b.WriteString(signature(m.Type))
	}
	b.WriteString(" }")
	return b.String()
}

// signature renders the parameter and result lists of a func type.
func signature(t reflect.Type) string {
	var b strings.Builder
	b.WriteString("(")
	for i := 0; i < t.NumIn(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		if t.IsVariadic() && i == t.NumIn()-1 {
			b.WriteString("...")
			b.WriteString(canonicalTypeName(t.In(i).Elem()))
			continue
		}
		b.WriteString(canonicalTypeName(t.In(i)))
	}
	b.WriteString(")")

	switch t.NumOut() {
	case 0:
	case 1:
		b.WriteString(" ")
		b.WriteString(canonicalTypeName(t.Out(0)))
	default:
		b.WriteString(" (")
		for i := 0; i < t.NumOut(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(canonicalTypeName(t.Out(i)))
		}
		b.WriteString(")")
	}
	return b.String()
}
