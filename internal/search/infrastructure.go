package search

import (
	"regexp"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/queryir"
	"github.com/niio972/phis-ws/internal/rdf"
)

// Infrastructure is a site, installation or facility of the information
// system: a member of the oeso:Infrastructure class hierarchy.
type Infrastructure struct {
	URI          string `json:"uri"`
	RDFType      string `json:"rdfType"`
	RDFTypeLabel string `json:"rdfTypeLabel"`
	Label        string `json:"label"`
	Parent       string `json:"parent,omitempty"`
}

// Result variables of the infrastructure search.
const (
	varURI          queryir.Var = "uri"
	varRDFType      queryir.Var = "rdfType"
	varRDFTypeLabel queryir.Var = "rdfTypeLabel"
	varIsPartOf     queryir.Var = "isPartOf"
	varLabel        queryir.Var = "label"
)

// Infrastructures is the infrastructure search family.
type Infrastructures struct{}

var _ Family[Infrastructure] = Infrastructures{}

// Name implements Family.
func (Infrastructures) Name() string { return "infrastructures" }

// Key implements Family.
func (Infrastructures) Key(inf Infrastructure) string { return inf.URI }

// subject returns the node standing for the searched entity: the fixed
// identifier when one was given, ?uri otherwise.
func (Infrastructures) subject(c Criteria) queryir.Node {
	if c.URI() != "" {
		return queryir.Ref(c.URI())
	}
	return varURI
}

// BuildSearch implements Family.
//
//	SELECT DISTINCT ?uri ?rdfType ?rdfTypeLabel ?isPartOf ?label
//	WHERE {
//	  ?rdfType rdfs:subClassOf* oeso:Infrastructure .
//	  ?uri rdf:type ?rdfType .
//	  OPTIONAL { ?rdfType rdfs:label ?rdfTypeLabel . FILTER (language) }
//	  OPTIONAL { ?uri oeso:isPartOf ?isPartOf . }
//	  OPTIONAL { ?uri rdfs:label ?label . }
//	  FILTER (REGEX(?label, "...", "i"))
//	}
//	LIMIT pageSize OFFSET page*pageSize
//
// Fixed identifier, type and parent replace the matching variables and are
// not projected.
func (f Infrastructures) BuildSearch(c Criteria) queryir.GraphQuery {
	subject := f.subject(c)

	var projections []queryir.Projection
	var where []queryir.Pattern

	if c.URI() == "" {
		projections = append(projections, varURI)
	}

	// The type is either fixed or resolved through the class hierarchy
	var typeNode queryir.Node = queryir.Ref(c.Type())
	if c.Type() != "" {
		where = append(where, queryir.Triple{S: subject, P: queryir.Ref(rdf.RDFType), O: typeNode})
	} else {
		typeNode = varRDFType
		projections = append(projections, varRDFType)
		where = append(where,
			queryir.Triple{S: varRDFType, P: queryir.Ref(rdf.RDFSSubClassOf), O: queryir.Ref(rdf.OESOInfrastructure), Path: queryir.PathZeroOrMore},
			queryir.Triple{S: subject, P: queryir.Ref(rdf.RDFType), O: varRDFType},
		)
	}

	// Type label, untagged or in the requested language
	typeLabel := []queryir.Pattern{
		queryir.Triple{S: typeNode, P: queryir.Ref(rdf.RDFSLabel), O: varRDFTypeLabel},
	}
	if c.Language() != "" {
		typeLabel = append(typeLabel, queryir.Filter{Expr: queryir.AnyOf{Exprs: []queryir.Expr{
			queryir.LangIsEmpty{Var: varRDFTypeLabel},
			queryir.LangMatches{Var: varRDFTypeLabel, Range: c.Language()},
		}}})
	}
	projections = append(projections, varRDFTypeLabel)
	where = append(where, queryir.Optional{Patterns: typeLabel})

	// Parent
	if c.Parent() != "" {
		where = append(where, queryir.Triple{S: subject, P: queryir.Ref(rdf.OESOIsPartOf), O: queryir.Ref(c.Parent())})
	} else {
		projections = append(projections, varIsPartOf)
		where = append(where, queryir.Optional{Patterns: []queryir.Pattern{
			queryir.Triple{S: subject, P: queryir.Ref(rdf.OESOIsPartOf), O: varIsPartOf},
		}})
	}

	// Label
	projections = append(projections, varLabel)
	where = append(where, queryir.Optional{Patterns: []queryir.Pattern{
		queryir.Triple{S: subject, P: queryir.Ref(rdf.RDFSLabel), O: varLabel},
	}})
	if c.Label() != "" {
		where = append(where, LabelFilter(varLabel, c.Label()))
	}

	return queryir.GraphQuery{
		Distinct:    true,
		Projections: projections,
		Where:       where,
		Window:      c.Page().Window(),
	}
}

// BuildCount implements Family. It counts distinct subjects of the search
// pattern: ?uri, or the fixed identifier.
func (f Infrastructures) BuildCount(c Criteria) queryir.GraphQuery {
	return f.BuildSearch(c).Count(f.subject(c))
}

// Materialize implements Family.
//
// Identifier, type and parent fixed by the criteria are echoed verbatim.
// The type label and label are required: a row without them fails with a
// materialization error. The parent is optional.
func (Infrastructures) Materialize(row rdf.Binding, c Criteria) (Infrastructure, error) {
	var inf Infrastructure

	if c.URI() != "" {
		inf.URI = string(c.URI())
	} else {
		uri, ok := row.String(string(varURI))
		if !ok {
			return Infrastructure{}, apperr.MissingBinding("infrastructure", string(varURI))
		}
		inf.URI = uri
	}

	if c.Type() != "" {
		inf.RDFType = string(c.Type())
	} else {
		t, ok := row.String(string(varRDFType))
		if !ok {
			return Infrastructure{}, apperr.MissingBinding(inf.URI, string(varRDFType))
		}
		inf.RDFType = t
	}

	typeLabel, ok := row.String(string(varRDFTypeLabel))
	if !ok {
		return Infrastructure{}, apperr.MissingBinding(inf.URI, string(varRDFTypeLabel))
	}
	inf.RDFTypeLabel = typeLabel

	label, ok := row.String(string(varLabel))
	if !ok {
		return Infrastructure{}, apperr.MissingBinding(inf.URI, string(varLabel))
	}
	inf.Label = label

	if c.Parent() != "" {
		inf.Parent = string(c.Parent())
	} else if parent, ok := row.String(string(varIsPartOf)); ok {
		inf.Parent = parent
	}

	return inf, nil
}

// Create is not supported for infrastructures.
func (Infrastructures) Create([]Infrastructure) error {
	return apperr.Unsupported("infrastructures", "create")
}

// Update is not supported for infrastructures.
func (Infrastructures) Update([]Infrastructure) error {
	return apperr.Unsupported("infrastructures", "update")
}

// Delete is not supported for infrastructures.
func (Infrastructures) Delete([]Infrastructure) error {
	return apperr.Unsupported("infrastructures", "delete")
}

// FindByID is not supported for infrastructures; search with WithURI.
func (Infrastructures) FindByID(string) (Infrastructure, error) {
	return Infrastructure{}, apperr.Unsupported("infrastructures", "find by id")
}

// LabelFilter returns the case-insensitive substring filter on v. The
// substring is quoted so regex metacharacters in it match literally.
func LabelFilter(v queryir.Var, substring string) queryir.Filter {
	return queryir.Filter{Expr: queryir.Regex{Var: v, Pattern: regexp.QuoteMeta(substring), Flags: "i"}}
}
