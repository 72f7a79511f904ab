// Package textclean valida el texto libre que llega de los formularios.
package textclean

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrMarkup indica que el texto contiene algo que un navegador leería
// como etiqueta HTML. No se recorta: se rechaza.
var ErrMarkup = errors.New("markup is not allowed")

var strict = bluemonday.StrictPolicy()

// Clean quita espacios en los extremos y devuelve ErrMarkup si StrictPolicy
// tendría que cortar algo. Entidades y caracteres sueltos como "<" o "&"
// se aceptan tal cual.
func Clean(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if html.UnescapeString(strict.Sanitize(s)) != html.UnescapeString(s) {
		return "", ErrMarkup
	}
	return s, nil
}

// Fields limpia varios campos de un mismo formulario y guarda el primer
// error con el nombre del campo.
type Fields struct {
	err error
}

func (f *Fields) Text(name, s string) string {
	v, err := Clean(s)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("%s: %w", name, err)
	}
	return v
}

func (f *Fields) Err() error { return f.err }
