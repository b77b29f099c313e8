package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/queryir"
	"github.com/niio972/phis-ws/internal/querysparql"
	"github.com/niio972/phis-ws/internal/rdf"
	"github.com/niio972/phis-ws/internal/triplestore"
)

// LabelsForURI returns the sorted distinct labels of uri. An entity with no
// label yields an empty slice.
func LabelsForURI(ctx context.Context, s triplestore.Session, uri string) ([]string, error) {
	if err := rdf.ValidateIRI(uri); err != nil {
		return nil, apperr.Validation("uri", "%v", err)
	}

	q := queryir.GraphQuery{
		Distinct:    true,
		Projections: []queryir.Projection{varLabel},
		Where: []queryir.Pattern{
			queryir.Triple{S: queryir.Ref(uri), P: queryir.Ref(rdf.RDFSLabel), O: varLabel},
		},
	}

	rows, err := s.Select(ctx, querysparql.MustCompile(q))
	if err != nil {
		return nil, storeFailure("labels for "+uri, err)
	}

	labels := make([]string, 0, len(rows))
	for _, row := range rows {
		if l, ok := row.String(string(varLabel)); ok {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

// URIsAndLabelsByLabelAndType returns every instance of rootType or one of
// its subclasses whose label contains label, ignoring case, mapped to its
// sorted matching labels.
func URIsAndLabelsByLabelAndType(ctx context.Context, s triplestore.Session, label string, rootType rdf.IRI) (map[string][]string, error) {
	if err := rdf.ValidateIRI(string(rootType)); err != nil {
		return nil, apperr.Validation("rdfType", "%v", err)
	}

	q := queryir.GraphQuery{
		Distinct:    true,
		Projections: []queryir.Projection{varURI, varLabel},
		Where: []queryir.Pattern{
			queryir.Triple{S: varRDFType, P: queryir.Ref(rdf.RDFSSubClassOf), O: queryir.Ref(rootType), Path: queryir.PathZeroOrMore},
			queryir.Triple{S: varURI, P: queryir.Ref(rdf.RDFType), O: varRDFType},
			queryir.Triple{S: varURI, P: queryir.Ref(rdf.RDFSLabel), O: varLabel},
			LabelFilter(varLabel, label),
		},
	}

	rows, err := s.Select(ctx, querysparql.MustCompile(q))
	if err != nil {
		return nil, storeFailure("search labels", err)
	}

	out := make(map[string][]string)
	for i, row := range rows {
		uri, ok := row.String(string(varURI))
		if !ok {
			return nil, apperr.StoreFailure("search labels", fmt.Errorf("row %d has no ?%s", i, varURI))
		}
		if l, ok := row.String(string(varLabel)); ok {
			out[uri] = append(out[uri], l)
		} else if _, seen := out[uri]; !seen {
			out[uri] = []string{}
		}
	}
	for uri := range out {
		sort.Strings(out[uri])
	}
	return out, nil
}

// ExistsAndIsVariable reports whether uri is an instance of oeso:Variable or
// one of its subclasses.
func ExistsAndIsVariable(ctx context.Context, s triplestore.Session, uri string) (bool, error) {
	if err := rdf.ValidateIRI(uri); err != nil {
		return false, apperr.Validation("variableUri", "%v", err)
	}

	q := queryir.GraphQuery{
		Form: queryir.FormAsk,
		Where: []queryir.Pattern{
			queryir.Triple{S: queryir.Ref(uri), P: queryir.Ref(rdf.RDFType), O: varRDFType},
			queryir.Triple{S: varRDFType, P: queryir.Ref(rdf.RDFSSubClassOf), O: queryir.Ref(rdf.OESOVariable), Path: queryir.PathZeroOrMore},
		},
	}

	ok, err := s.Ask(ctx, querysparql.MustCompile(q))
	if err != nil {
		return false, storeFailure("check variable "+uri, err)
	}
	return ok, nil
}
