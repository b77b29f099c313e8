// Package docstore holds provenance and measurement documents in BadgerDB.
//
// Documents are msgpack encoded under typed key prefixes:
//
//	prov\x00<provenance uri>                 -> Provenance
//	data\x00<variable uri>\x00<data uri>      -> Data
//
// Data keys lead with the variable so a search for one variable scans only
// that variable's records. Counting and fetching go through the same
// DataFilter.Matches, so a count and the page it sizes always agree.
package docstore
