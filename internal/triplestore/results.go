package triplestore

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/niio972/phis-ws/internal/rdf"
)

// resultsDocument is the application/sparql-results+json document.
type resultsDocument struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]jsonTerm `json:"bindings"`
	} `json:"results,omitempty"`
	Boolean *bool `json:"boolean,omitempty"`
}

type jsonTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

func (t jsonTerm) term() (rdf.Term, error) {
	switch t.Type {
	case "uri":
		return rdf.IRI(t.Value), nil
	case "literal", "typed-literal":
		return rdf.Literal{Value: t.Value, Lang: t.Lang, Datatype: rdf.IRI(t.Datatype)}, nil
	case "bnode":
		return rdf.BlankNode(t.Value), nil
	default:
		return nil, fmt.Errorf("unknown term type %q", t.Type)
	}
}

// decodeSelect parses the rows of a SELECT result.
func decodeSelect(r io.Reader) ([]rdf.Binding, error) {
	var doc resultsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}
	if doc.Results == nil {
		return nil, fmt.Errorf("decode sparql results: document has no results")
	}

	rows := make([]rdf.Binding, 0, len(doc.Results.Bindings))
	for i, raw := range doc.Results.Bindings {
		row := make(rdf.Binding, len(raw))
		for name, jt := range raw {
			term, err := jt.term()
			if err != nil {
				return nil, fmt.Errorf("decode row %d, ?%s: %w", i, name, err)
			}
			row[name] = term
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeAsk parses the boolean of an ASK result.
func decodeAsk(r io.Reader) (bool, error) {
	var doc resultsDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return false, fmt.Errorf("decode sparql results: %w", err)
	}
	if doc.Boolean == nil {
		return false, fmt.Errorf("decode sparql results: document has no boolean")
	}
	return *doc.Boolean, nil
}
