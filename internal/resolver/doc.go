// Package resolver turns the secondary filters of a measurement search
// (scientific objects, provenances, variable) into a primary-store filter
// before the data store is touched.
//
// A filter the secondary stores prove empty does not fail the search: the
// resolution is marked unsatisfiable and the caller answers "no results"
// without counting or fetching.
package resolver
