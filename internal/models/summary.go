package models

import "time"

// TimeWindow is a half-open interval [Start, End) over the session duration
// plus the segments whose start_time falls inside it. Windows are derived per
// request and never serialized; together they partition [0, duration) with no
// gaps or overlaps.
type TimeWindow struct {
	Index    int
	Start    float64
	End      float64
	Segments []SpeechSegment
}

// TimelineSummary is the structured summary for one time window. A window the
// oracle could not summarize is reported with Degraded set rather than
// dropped; an empty window yields empty lists, never an error.
type TimelineSummary struct {
	TimeRange      string   `json:"time_range"`
	StartTime      float64  `json:"start_time"`
	EndTime        float64  `json:"end_time"`
	Speakers       []string `json:"speakers"`
	KeyPoints      []string `json:"key_points"`
	Topics         []string `json:"topics"`
	ActionItems    []string `json:"action_items"`
	Degraded       bool     `json:"degraded,omitempty"`
	DegradedReason string   `json:"degraded_reason,omitempty"`
}

// MeetingSummaryResponse is the terminal artifact of one summarization
// request: one TimelineSummary per window in chronological order, plus the
// overall narrative. Degraded marks an overall-summary failure that left the
// narrative fields empty while preserving the window summaries.
type MeetingSummaryResponse struct {
	MeetingID         string            `json:"meeting_id"`
	GeneratedAt       time.Time         `json:"generated_at"`
	TotalDuration     float64           `json:"total_duration"`
	TimelineSummaries []TimelineSummary `json:"timeline_summaries"`
	OverallSummary    string            `json:"overall_summary"`
	KeyDecisions      []string          `json:"key_decisions"`
	FollowUpActions   []string          `json:"follow_up_actions"`
	Degraded          bool              `json:"degraded,omitempty"`
	DegradedReason    string            `json:"degraded_reason,omitempty"`
}
