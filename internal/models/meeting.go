// Package models defines the data structures for meeting transcripts and summaries.
package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SpeechSegment represents a single diarized utterance from the transcription
// client. Times are seconds relative to the meeting start.
type SpeechSegment struct {
	ID         uuid.UUID `json:"id"`
	SpeakerID  string    `json:"speaker_id"`
	Text       string    `json:"text"`
	StartTime  float64   `json:"start_time"`
	EndTime    float64   `json:"end_time"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// MeetingSession is one complete meeting's transcript plus metadata.
// Apart from participant derivation in Validate it is treated as an
// immutable input for the duration of one request.
type MeetingSession struct {
	ID           uuid.UUID       `json:"id"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	Duration     float64         `json:"duration"`
	Participants []string        `json:"participants"`
	Transcript   []SpeechSegment `json:"transcript"`
	AudioFileURL string          `json:"audio_file_url,omitempty"`
}

// ValidationError reports a semantically inconsistent session or segment.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid session: %s: %s", e.Field, e.Reason)
}

// Validate checks the session invariants before any summarization work is
// done. An empty transcript with a positive duration is allowed; a negative
// duration or an inverted segment time range is not. An empty participants
// list is filled in from the transcript's speakers.
func (s *MeetingSession) Validate() error {
	if s.Duration < 0 {
		return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must be >= 0, got %g", s.Duration)}
	}

	prevStart := 0.0
	for i, seg := range s.Transcript {
		field := fmt.Sprintf("transcript[%d]", i)
		if seg.Text == "" {
			return &ValidationError{Field: field + ".text", Reason: "must not be empty"}
		}
		if seg.StartTime < 0 {
			return &ValidationError{Field: field + ".start_time", Reason: fmt.Sprintf("must be >= 0, got %g", seg.StartTime)}
		}
		if seg.EndTime < seg.StartTime {
			return &ValidationError{Field: field + ".end_time", Reason: fmt.Sprintf("must be >= start_time, got %g < %g", seg.EndTime, seg.StartTime)}
		}
		if seg.Confidence < 0 || seg.Confidence > 1 {
			return &ValidationError{Field: field + ".confidence", Reason: fmt.Sprintf("must be in [0,1], got %g", seg.Confidence)}
		}
		if seg.StartTime < prevStart {
			return &ValidationError{Field: field + ".start_time", Reason: "transcript must be ordered by start_time"}
		}
		if seg.EndTime > s.Duration {
			return &ValidationError{Field: "duration", Reason: fmt.Sprintf("must cover all segments, got %g < segment end %g", s.Duration, seg.EndTime)}
		}
		prevStart = seg.StartTime
	}

	// Participants must name exactly the speakers heard in the transcript.
	// An empty list is derived instead of rejected. A transcript-less session
	// keeps whatever attendee list it came with.
	if len(s.Participants) == 0 {
		s.Participants = s.Speakers()
	} else if len(s.Transcript) > 0 && !sameNameSet(s.Participants, s.Speakers()) {
		return &ValidationError{Field: "participants", Reason: "must match the transcript's speaker ids"}
	}

	return nil
}

func sameNameSet(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	if len(set) != len(b) {
		return false
	}
	for _, v := range b {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

// Speakers returns the sorted set of speaker ids present in the transcript.
func (s *MeetingSession) Speakers() []string {
	seen := make(map[string]struct{}, len(s.Transcript))
	var out []string
	for _, seg := range s.Transcript {
		if _, ok := seen[seg.SpeakerID]; ok {
			continue
		}
		seen[seg.SpeakerID] = struct{}{}
		out = append(out, seg.SpeakerID)
	}
	sort.Strings(out)
	return out
}
