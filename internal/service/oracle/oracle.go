// Package oracle defines the interface for summarization providers.
package oracle

import (
	"context"
	"errors"
)

// WindowSummary is the structured result for one time window of transcript.
type WindowSummary struct {
	KeyPoints   []string `json:"key_points"`
	Topics      []string `json:"topics"`
	ActionItems []string `json:"action_items"`
}

// MeetingSummary is the structured result for the whole meeting transcript.
type MeetingSummary struct {
	Overall         string   `json:"overall_summary"`
	KeyDecisions    []string `json:"key_decisions"`
	FollowUpActions []string `json:"follow_up_actions"`
}

// Sentinel errors for provider failures. Callers degrade the affected window
// or the overall section instead of aborting the request.
var (
	// ErrUnavailable - the provider could not be reached (transport, auth,
	// rate limiting) after the client's own retries.
	ErrUnavailable = errors.New("summarization provider unavailable")

	// ErrMalformed - the provider answered but the content did not parse
	// into the expected structured shape.
	ErrMalformed = errors.New("summarization provider returned malformed content")
)

// Oracle defines the interface for summarization providers (mock, Gemini).
// Implementations must be safe for concurrent use: window calls for one
// request are issued in parallel.
type Oracle interface {
	// SummarizeWindow produces key points, topics, and action items for the
	// transcript of a single time window.
	SummarizeWindow(ctx context.Context, transcript, timeRange string, speakers []string) (WindowSummary, error)

	// SummarizeMeeting produces the overall narrative, decisions, and
	// follow-up actions from the full transcript.
	SummarizeMeeting(ctx context.Context, transcript string) (MeetingSummary, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}
