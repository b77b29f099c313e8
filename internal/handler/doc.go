// Package handler implements the REST API of the phenotyping web service.
//
// # Routes
//
//	GET  /infrastructures
//	GET  /experiments
//	POST /experiments
//	PUT  /experiments
//	GET  /experiments/{uri}
//	PUT  /experiments/{uri}/variables
//	PUT  /experiments/{uri}/sensors
//	GET  /experiments/{uri}/data
//	GET  /metrics
//
// Identifiers in paths are full IRIs, percent-encoded into one segment.
//
// # Response Format
//
// Every response is a BrAPI envelope:
//
//	{"metadata": {"pagination": {...}, "status": [...], "datafiles": [...]},
//	 "result": {"data": [...]}}
//
// A search that matches nothing answers 404 with a "No results" status.
// Validation errors answer 400, unknown entities 404, unsupported
// operations 501 and store failures 500.
package handler
