package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JobType routes a job to a reconciler. Values outside the known set are kept as-is.
type JobType string

const (
	JobProducts  JobType = "PRODUCTS"
	JobOrders    JobType = "ORDERS"
	JobCustomers JobType = "CUSTOMERS"
	JobCheckouts JobType = "CHECKOUTS"
)

// Known reports whether a reconciler exists for the type
func (t JobType) Known() bool {
	switch t {
	case JobProducts, JobOrders, JobCustomers, JobCheckouts:
		return true
	}
	return false
}

// Job is the unit of work carried by the ingestion queue
type Job struct {
	Type     JobType           `json:"type"`
	TenantID string            `json:"tenantId"`
	Payload  []json.RawMessage `json:"payload"`
	// Attempt counts previous failed runs of this job
	Attempt int `json:"attempt,omitempty"`
}

// NormalizeTopic maps a webhook topic such as "orders/create" to its job type
func NormalizeTopic(topic string) JobType {
	resource, _, _ := strings.Cut(strings.TrimSpace(topic), "/")
	return JobType(strings.ToUpper(resource))
}

// NewWebhookJob wraps a single webhook body into a job
func NewWebhookJob(tenantID, topic string, body []byte) *Job {
	payload := make(json.RawMessage, len(body))
	copy(payload, body)
	return &Job{
		Type:     NormalizeTopic(topic),
		TenantID: tenantID,
		Payload:  []json.RawMessage{payload},
	}
}

// Encode serializes the job for the queue
func (j *Job) Encode() ([]byte, error) {
	payload := j.Payload
	if payload == nil {
		payload = []json.RawMessage{}
	}
	out := *j
	out.Payload = payload
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	return data, nil
}

// DecodeJob parses a queue message body
func DecodeJob(body []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.TenantID == "" {
		return nil, fmt.Errorf("%w: missing tenantId", ErrMalformedJob)
	}
	return &job, nil
}

// FailedJob is a job that exhausted its attempts, kept for inspection and redrive
type FailedJob struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	TenantID  string    `json:"tenantId"`
	Body      []byte    `json:"body"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError"`
	FailedAt  time.Time `json:"failedAt"`
}

// WebhookEvent is the audit record of an accepted webhook
type WebhookEvent struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Topic      string    `json:"topic"`
	JobType    JobType   `json:"jobType"`
	Size       int       `json:"size"`
	ReceivedAt time.Time `json:"receivedAt"`
}
