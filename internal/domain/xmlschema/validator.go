// Package xmlschema: modelo de elementos XML con campos ordenados y validadores por campo.
package xmlschema

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Validator es un predicado puro sobre el valor de un campo.
// Un valor nil siempre es válido salvo para Required.
type Validator interface {
	Validate(value any) bool
	String() string
}

// ── Len ──────────────────────────────────────────────────────────────────────

type lenValidator struct{ min, max int }

// Len acepta textos cuya longitud (en runas) está en [min, max].
func Len(min, max int) Validator { return lenValidator{min: min, max: max} }

func (v lenValidator) Validate(value any) bool {
	if isNil(value) {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	n := utf8.RuneCountInString(s)
	return n >= v.min && n <= v.max
}

func (v lenValidator) String() string { return fmt.Sprintf("Len(%d,%d)", v.min, v.max) }

// ── Regex ────────────────────────────────────────────────────────────────────

type regexValidator struct{ re *regexp.Regexp }

// Regex acepta textos que casan con el patrón. Si el patrón no está anclado
// al inicio se ancla, de modo que solo cuenta una coincidencia desde el primer carácter.
func Regex(pattern string) Validator {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^(?:" + pattern + ")"
	}
	return regexValidator{re: regexp.MustCompile(pattern)}
}

func (v regexValidator) Validate(value any) bool {
	if isNil(value) {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return v.re.MatchString(s)
}

func (v regexValidator) String() string { return "Regex(" + v.re.String() + ")" }

// ── Enum ─────────────────────────────────────────────────────────────────────

type enumValidator struct{ values []string }

// Enum acepta solo los valores listados.
func Enum(values ...string) Validator { return enumValidator{values: values} }

func (v enumValidator) Validate(value any) bool {
	if isNil(value) {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return slices.Contains(v.values, s)
}

func (v enumValidator) String() string { return "Enum(" + strings.Join(v.values, ",") + ")" }

// ── Type / ListOf ────────────────────────────────────────────────────────────

type typeValidator struct{ t reflect.Type }

// Type acepta valores cuyo tipo dinámico es exactamente T (sin subtipos).
func Type[T any]() Validator { return typeValidator{t: reflect.TypeFor[T]()} }

func (v typeValidator) Validate(value any) bool {
	if isNil(value) {
		return true
	}
	return reflect.TypeOf(value) == v.t
}

func (v typeValidator) String() string { return "Type(" + v.t.String() + ")" }

type listValidator struct{ t reflect.Type }

// ListOf acepta un slice cuyos miembros son todos exactamente de tipo T.
// Un slice vacío es válido.
func ListOf[T any]() Validator { return listValidator{t: reflect.TypeFor[T]()} }

func (v listValidator) Validate(value any) bool {
	if isNil(value) {
		return true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if item.Kind() == reflect.Interface {
			if item.IsNil() {
				return false
			}
			item = item.Elem()
		}
		if item.Type() != v.t {
			return false
		}
	}
	return true
}

func (v listValidator) String() string { return "ListOf(" + v.t.String() + ")" }

// ── Required ─────────────────────────────────────────────────────────────────

type requiredValidator struct{}

// Required rechaza únicamente el valor ausente. Se evalúa al serializar, no al asignar.
func Required() Validator { return requiredValidator{} }

func (requiredValidator) Validate(value any) bool { return !isNil(value) }

func (requiredValidator) String() string { return "Required" }

func isRequired(v Validator) bool {
	_, ok := v.(requiredValidator)
	return ok
}

// isNil trata como ausentes tanto nil como punteros y slices nil tipados.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
