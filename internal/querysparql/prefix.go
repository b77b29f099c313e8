package querysparql

import (
	"strings"

	"github.com/niio972/phis-ws/internal/rdf"
)

// knownPrefixes maps prefix names to the namespaces they abbreviate.
var knownPrefixes = []struct {
	name string
	ns   string
}{
	{"oeso", rdf.NamespaceOESO},
	{"rdf", rdf.NamespaceRDF},
	{"rdfs", rdf.NamespaceRDFS},
	{"xsd", rdf.NamespaceXSD},
}

// abbreviate splits iri into a known prefix and a local name. Local names
// are restricted to letters, digits, '_' and '-' so the prefixed form never
// needs escaping.
func abbreviate(iri rdf.IRI) (name, ns, local string, ok bool) {
	s := string(iri)
	for _, p := range knownPrefixes {
		if !strings.HasPrefix(s, p.ns) {
			continue
		}
		local = s[len(p.ns):]
		if isPlainLocal(local) {
			return p.name, p.ns, local, true
		}
	}
	return "", "", "", false
}

func isPlainLocal(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case (c >= '0' && c <= '9') || c == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
