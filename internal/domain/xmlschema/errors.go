package xmlschema

import (
	"errors"
	"fmt"
)

// Errores del modelo. Se comparan con errors.Is sobre el *FieldError devuelto.
var (
	ErrUnknownField    = errors.New("campo no declarado")
	ErrInvalidValue    = errors.New("valor inválido")
	ErrMissingRequired = errors.New("campo obligatorio sin valor")
	ErrTypeMismatch    = errors.New("tipo de valor no serializable")
)

// FieldError identifica el tipo dueño y el campo que provocó el error.
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("xmlschema: %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("xmlschema: %s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(typ, field string, err error) error {
	return &FieldError{Type: typ, Field: field, Err: err}
}
