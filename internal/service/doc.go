// Package service exposes the searches and experiment operations of the
// web service, independent of transport.
//
// Every search records its outcome in metrics and logs it. Errors keep
// their apperr code so transports can map them to statuses.
package service
