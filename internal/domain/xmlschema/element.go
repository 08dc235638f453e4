package xmlschema

import (
	"encoding/xml"
	"reflect"

	"github.com/beevik/etree"
)

// Prefix es el prefijo con el que se emiten los elementos con namespace.
const Prefix = "tns"

// Node es cualquier elemento capaz de serializarse a un árbol etree.
type Node interface {
	Name() string
	Generate() (*etree.Element, error)
}

// Field describe un campo en la tabla de construcción de un tipo.
type Field struct {
	Name       string
	Validators []Validator
}

// F es un atajo para declarar tablas de campos.
func F(name string, validators ...Validator) Field {
	return Field{Name: name, Validators: validators}
}

type attr struct{ key, value string }

// Element es el contenedor genérico: campos en orden de declaración, valores
// validados al escribir y obligatoriedad comprobada al serializar.
// Un elemento está en modo campos o en modo texto, nunca en ambos.
type Element struct {
	typeName  string
	name      string
	namespace string

	order      []string
	items      map[string]any
	validators map[string][]Validator
	required   map[string][]Validator
	computed   map[string]bool
	attrs      []attr

	textMode       bool
	text           any
	textValidators []Validator
	textRequired   []Validator

	onSet          []func(field string) error
	beforeGenerate func() error
}

// New crea un elemento en modo campos a partir de su tabla.
func New(typeName, namespace string, fields ...Field) *Element {
	e := &Element{
		typeName:   typeName,
		namespace:  namespace,
		items:      make(map[string]any, len(fields)),
		validators: make(map[string][]Validator, len(fields)),
		required:   make(map[string][]Validator, len(fields)),
		computed:   map[string]bool{},
	}
	for _, f := range fields {
		e.Declare(f.Name, f.Validators...)
	}
	return e
}

// NewText crea un elemento hoja cuyo contenido es un único texto.
func NewText(typeName, namespace string, validators ...Validator) *Element {
	e := New(typeName, namespace)
	e.textMode = true
	for _, v := range validators {
		if isRequired(v) {
			e.textRequired = append(e.textRequired, v)
		} else {
			e.textValidators = append(e.textValidators, v)
		}
	}
	return e
}

// Declare registra un campo. Volver a declararlo reemplaza sus validadores
// y conserva su posición.
func (e *Element) Declare(name string, validators ...Validator) {
	if _, ok := e.validators[name]; !ok {
		e.order = append(e.order, name)
		e.items[name] = nil
	}
	var vals, req []Validator
	for _, v := range validators {
		if isRequired(v) {
			req = append(req, v)
		} else {
			vals = append(vals, v)
		}
	}
	e.validators[name] = vals
	e.required[name] = req
}

// MarkComputed marca un campo como derivado: Set sobre él no tiene efecto.
func (e *Element) MarkComputed(name string) { e.computed[name] = true }

// OnSet registra un callback que se ejecuta tras cada escritura válida.
// Si devuelve error, la escritura se revierte.
func (e *Element) OnSet(fn func(field string) error) { e.onSet = append(e.onSet, fn) }

// BeforeGenerate registra un paso previo a cada serialización.
func (e *Element) BeforeGenerate(fn func() error) { e.beforeGenerate = fn }

// ── Acceso a campos ──────────────────────────────────────────────────────────

// Set valida y asigna. Un valor inválido deja el campo sin cambios.
// Sobre un campo derivado la escritura se ignora en silencio.
func (e *Element) Set(name string, value any) error {
	if _, ok := e.validators[name]; !ok {
		return fieldErr(e.typeName, name, ErrUnknownField)
	}
	if e.computed[name] {
		return nil
	}
	return e.assign(name, value, true)
}

// SetComputed asigna un campo derivado. Lo usan los tipos que calculan sus propios campos.
func (e *Element) SetComputed(name string, value any) error {
	if _, ok := e.validators[name]; !ok {
		return fieldErr(e.typeName, name, ErrUnknownField)
	}
	return e.assign(name, value, false)
}

func (e *Element) assign(name string, value any, notify bool) error {
	if isNil(value) {
		value = nil
	}
	for _, v := range e.validators[name] {
		if !v.Validate(value) {
			return &FieldError{Type: e.typeName, Field: name, Err: fmtInvalid(v)}
		}
	}
	prev := e.items[name]
	e.items[name] = value
	if !notify {
		return nil
	}
	for _, fn := range e.onSet {
		if err := fn(name); err != nil {
			e.items[name] = prev
			return err
		}
	}
	return nil
}

// Get devuelve el valor actual (nil si no está asignado).
func (e *Element) Get(name string) (any, error) {
	if _, ok := e.validators[name]; !ok {
		return nil, fieldErr(e.typeName, name, ErrUnknownField)
	}
	return e.items[name], nil
}

// GetString devuelve el valor textual de un campo o "" si no es texto o no existe.
func (e *Element) GetString(name string) string {
	s, _ := e.items[name].(string)
	return s
}

// Fields devuelve los nombres de campo en orden de declaración.
func (e *Element) Fields() []string { return append([]string(nil), e.order...) }

// ── Modo texto ───────────────────────────────────────────────────────────────

// SetText asigna el contenido de un elemento hoja.
func (e *Element) SetText(s string) error {
	if !e.textMode {
		return fieldErr(e.typeName, "text", ErrTypeMismatch)
	}
	for _, v := range e.textValidators {
		if !v.Validate(s) {
			return &FieldError{Type: e.typeName, Field: "text", Err: fmtInvalid(v)}
		}
	}
	e.text = s
	return nil
}

// Text devuelve el contenido de un elemento hoja.
func (e *Element) Text() string {
	s, _ := e.text.(string)
	return s
}

// ── Identidad ────────────────────────────────────────────────────────────────

// Name es el nombre del elemento XML; por defecto el nombre del tipo.
func (e *Element) Name() string {
	if e.name != "" {
		return e.name
	}
	return e.typeName
}

// SetName sobreescribe el nombre del elemento XML.
func (e *Element) SetName(name string) { e.name = name }

// TypeName es el nombre del tipo dueño, usado en los errores.
func (e *Element) TypeName() string { return e.typeName }

func (e *Element) Namespace() string { return e.namespace }

func (e *Element) SetNamespace(ns string) { e.namespace = ns }

// XMLName devuelve el nombre cualificado (namespace + nombre local).
func (e *Element) XMLName() xml.Name { return xml.Name{Space: e.namespace, Local: e.Name()} }

// SetAttr asigna un atributo; el orden de inserción se conserva.
func (e *Element) SetAttr(key, value string) {
	for i := range e.attrs {
		if e.attrs[i].key == key {
			e.attrs[i].value = value
			return
		}
	}
	e.attrs = append(e.attrs, attr{key: key, value: value})
}

// Attr devuelve el valor de un atributo o "".
func (e *Element) Attr(key string) string {
	for _, a := range e.attrs {
		if a.key == key {
			return a.value
		}
	}
	return ""
}

// ── Serialización ────────────────────────────────────────────────────────────

// Generate construye el árbol XML. Es el único punto donde se exige la obligatoriedad:
// gana la primera violación en orden de campos.
func (e *Element) Generate() (*etree.Element, error) {
	if e.beforeGenerate != nil {
		if err := e.beforeGenerate(); err != nil {
			return nil, err
		}
	}

	el := etree.NewElement(e.qualify(e.Name()))
	if e.namespace != "" {
		el.CreateAttr("xmlns:"+Prefix, e.namespace)
	}
	for _, a := range e.attrs {
		el.CreateAttr(a.key, a.value)
	}

	if e.textMode {
		for _, r := range e.textRequired {
			if !r.Validate(e.text) {
				return nil, fieldErr(e.typeName, "text", ErrMissingRequired)
			}
		}
		if s, ok := e.text.(string); ok {
			el.SetText(s)
		}
		return el, nil
	}

	for _, name := range e.order {
		value := e.items[name]
		for _, r := range e.required[name] {
			if !r.Validate(value) {
				return nil, fieldErr(e.typeName, name, ErrMissingRequired)
			}
		}
		if value == nil {
			continue
		}

		switch v := value.(type) {
		case string:
			el.CreateElement(e.qualify(name)).SetText(v)
		case Node:
			// solo se inserta en línea el hijo cuyo nombre coincide con el campo
			if v.Name() != name {
				return nil, fieldErr(e.typeName, name, ErrTypeMismatch)
			}
			child, err := v.Generate()
			if err != nil {
				return nil, err
			}
			e.adopt(el, child)
		default:
			rv := reflect.ValueOf(value)
			if rv.Kind() != reflect.Slice {
				return nil, fieldErr(e.typeName, name, ErrTypeMismatch)
			}
			wrapper := el.CreateElement(e.qualify(name))
			for i := 0; i < rv.Len(); i++ {
				n, ok := rv.Index(i).Interface().(Node)
				if !ok || isNil(n) {
					continue
				}
				child, err := n.Generate()
				if err != nil {
					return nil, err
				}
				e.adopt(wrapper, child)
			}
		}
	}
	return el, nil
}

// adopt cuelga un hijo generado quitando la declaración de namespace si ya está en ámbito.
func (e *Element) adopt(parent, child *etree.Element) {
	key := "xmlns:" + Prefix
	if e.namespace != "" && child.SelectAttrValue(key, "") == e.namespace {
		child.RemoveAttr(key)
	}
	parent.AddChild(child)
}

func (e *Element) qualify(local string) string {
	if e.namespace == "" {
		return local
	}
	return Prefix + ":" + local
}

func fmtInvalid(v Validator) error {
	return &invalidErr{validator: v.String()}
}

type invalidErr struct{ validator string }

func (e *invalidErr) Error() string { return ErrInvalidValue.Error() + " (" + e.validator + ")" }

func (e *invalidErr) Is(target error) bool { return target == ErrInvalidValue }
