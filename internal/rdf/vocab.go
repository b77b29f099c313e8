package rdf

// Namespaces used by the query builders.
const (
	NamespaceRDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NamespaceRDFS = "http://www.w3.org/2000/01/rdf-schema#"
	NamespaceXSD  = "http://www.w3.org/2001/XMLSchema#"
	NamespaceOESO = "http://www.opensilex.org/vocabulary/oeso#"
)

// Relations.
const (
	RDFType        IRI = NamespaceRDF + "type"
	RDFSLabel      IRI = NamespaceRDFS + "label"
	RDFSSubClassOf IRI = NamespaceRDFS + "subClassOf"
	OESOIsPartOf   IRI = NamespaceOESO + "isPartOf"
)

// Concepts.
const (
	OESOInfrastructure   IRI = NamespaceOESO + "Infrastructure"
	OESOScientificObject IRI = NamespaceOESO + "ScientificObject"
	OESOVariable         IRI = NamespaceOESO + "Variable"
)

// Datatypes.
const (
	XSDInteger IRI = NamespaceXSD + "integer"
)
