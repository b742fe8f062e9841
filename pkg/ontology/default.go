package ontology

import (
	_ "embed"
	"sync"
)

//go:embed default.yaml
var defaultYAML []byte

var defaultOnce = sync.OnceValue(func() *Ontology {
	o, err := Parse(defaultYAML)
	if err != nil {
		panic("ontology: embedded default is invalid: " + err.Error())
	}
	return o
})

// Default returns the built-in ontology covering the phase, sub-phase,
// component, mental-model and visualization vocabulary. Callers must not
// modify the returned value.
func Default() *Ontology { return defaultOnce() }
