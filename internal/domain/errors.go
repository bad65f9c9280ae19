package domain

import "errors"

var (
	// ErrTenantNotFound is returned when a webhook or sync names an unknown tenant
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantNotConnected is returned when a tenant has no access token yet
	ErrTenantNotConnected = errors.New("tenant not connected")
	// ErrMalformedJob is returned when a queue message cannot be decoded
	ErrMalformedJob = errors.New("malformed job")
	// ErrMalformedPayload is returned when a payload item lacks required fields
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrFailedJobNotFound is returned when redriving an unknown dead letter
	ErrFailedJobNotFound = errors.New("failed job not found")
)

// ErrUnknownJobType is returned when no reconciler handles a job type
var ErrUnknownJobType = errors.New("unknown job type")
