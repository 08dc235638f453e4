package fisk

import (
	"strings"

	"github.com/beevik/etree"
)

// FindAll devuelve, en orden de documento, los elementos (incluida la raíz)
// con el namespace y nombre local dados.
func FindAll(root *etree.Element, ns, local string) []*etree.Element {
	var out []*etree.Element
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if e.Tag == local && e.NamespaceURI() == ns {
			out = append(out, e)
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// FindFirst devuelve el primer elemento que coincide o nil.
func FindFirst(root *etree.Element, ns, local string) *etree.Element {
	if all := FindAll(root, ns, local); len(all) > 0 {
		return all[0]
	}
	return nil
}

// NewEnvelope envuelve un elemento en un sobre SOAP 1.1 con un único hijo en Body.
func NewEnvelope(body *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", NamespaceSOAP)
	b := env.CreateElement("soapenv:Body")
	if body != nil {
		b.AddChild(body)
	}
	return doc
}

// FindFault busca cualquier elemento cuyo nombre contenga "faultstring".
func FindFault(root *etree.Element) *FaultError {
	if root == nil {
		return nil
	}
	var fault *FaultError
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if fault != nil {
			return
		}
		if strings.Contains(e.Tag, "faultstring") {
			fault = &FaultError{Message: strings.TrimSpace(e.Text())}
			if p := e.Parent(); p != nil {
				for _, c := range p.ChildElements() {
					if strings.Contains(c.Tag, "faultcode") {
						fault.Code = strings.TrimSpace(c.Text())
					}
				}
			}
			return
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return fault
}
