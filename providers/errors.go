package providers

import "fmt"

// Moderation kinds reported by the polling provider.
const (
	ModerationRequest = "Request Moderated"
	ModerationContent = "Content Moderated"
)

// RequestError is returned for invalid requests that are rejected before any
// network call is made (bad dimensions, unknown preset, unconfigured backend).
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return "invalid request: " + e.Reason
}

// CapacityError is returned when the polling client is already running its
// maximum number of concurrent tasks. The request was not sent.
type CapacityError struct {
	Max int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("provider at capacity (%d concurrent tasks)", e.Max)
}

// APIError is returned for any non-2xx provider response and for transport
// failures that prevented a response. It carries the raw body so operators can
// correlate failures in provider dashboards. Transport failures have a zero
// StatusCode and the underlying error in Cause.
type APIError struct {
	Provider   string
	StatusCode int
	Status     string
	Body       string
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s error: %s", e.Provider, e.Body)
	}
	return fmt.Sprintf("%s error (HTTP %d %s): %s", e.Provider, e.StatusCode, e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// ModerationError is returned when the polling provider rejects a task on
// policy grounds, either before generation (Request Moderated) or after
// (Content Moderated). It is distinct from APIError because it is an expected,
// user-facing outcome.
type ModerationError struct {
	TaskID string
	Kind   string
}

func (e *ModerationError) Error() string {
	return fmt.Sprintf("task %s rejected by moderation (%s)", e.TaskID, e.Kind)
}

// ContentViolationError is returned when the synchronous provider flags the
// generated content. Carries the provider request id for follow-up.
type ContentViolationError struct {
	RequestID string
}

func (e *ContentViolationError) Error() string {
	return fmt.Sprintf("content violation (request %s)", e.RequestID)
}

// TimeoutError is returned when the polling budget is exhausted without the
// task reaching a terminal status. The provider-side task may still complete;
// the task id allows operator follow-up.
type TimeoutError struct {
	TaskID   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s still pending after %d poll attempts", e.TaskID, e.Attempts)
}

// DownloadError is returned when fetching a generated image from its signed
// URL fails.
type DownloadError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *DownloadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("download failed: %v", e.Cause)
	}
	return fmt.Sprintf("download of %s failed with HTTP %d", e.URL, e.StatusCode)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}
