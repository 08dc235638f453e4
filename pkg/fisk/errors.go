package fisk

import (
	"errors"
	"fmt"
)

var (
	// ErrElementNotFound el elemento ancla de la firma no existe en el sobre.
	ErrElementNotFound = errors.New("fisk: elemento no encontrado")
	// ErrUnverifiedReply la respuesta trae firma pero no hay verificador configurado.
	ErrUnverifiedReply = errors.New("fisk: respuesta firmada sin verificador configurado")
)

// TransportError respuesta HTTP no exitosa cuyo cuerpo no es XML.
type TransportError struct {
	Status int
	Reason string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fisk: transporte: %d: %s", e.Status, e.Reason)
}

// FaultError respuesta SOAP con faultstring.
type FaultError struct {
	Code    string
	Message string
}

func (e *FaultError) Error() string {
	if e.Code == "" {
		return "fisk: SOAP Fault: " + e.Message
	}
	return fmt.Sprintf("fisk: SOAP Fault [%s]: %s", e.Code, e.Message)
}
