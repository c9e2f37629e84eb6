// Package fixture generates synthetic meeting sessions for exercising the
// summarization pipeline without a transcription client.
package fixture

import (
	"hash/fnv"
	"sort"
	"time"

	"github.com/google/uuid"

	"meeting-summary-service/internal/models"
)

type scriptedUtterance struct {
	speaker    string
	start, end float64
	text       string
}

// Two scripted conversations, cycled through by index. Wording is chosen so
// the mock provider's keyword table finds topics in them.
var conversations = [][]scriptedUtterance{
	{
		{"Speaker 1", 0, 15, "Good morning everyone. Let's start the meeting."},
		{"Speaker 2", 15, 30, "Thanks for organizing this. I'd like to discuss the speech recognition integration."},
		{"Speaker 1", 30, 50, "Sure, we've been wiring up streaming transcription with speaker diarization."},
		{"Speaker 3", 50, 70, "That sounds great. What about the summarization feature?"},
		{"Speaker 1", 70, 95, "We're planning timeline-based summarization backed by a generative model."},
		{"Speaker 2", 95, 120, "I think we should test it with mock data first before going live."},
		{"Speaker 1", 120, 145, "Absolutely. We need to validate the prompts and response format."},
		{"Speaker 3", 145, 165, "When do you think we can have the first prototype ready?"},
		{"Speaker 1", 165, 185, "I estimate two weeks for the backend service."},
		{"Speaker 2", 185, 210, "Perfect. Let's sync again next week to review progress."},
	},
	{
		{"Speaker 1", 0, 20, "Let's walk through the mobile client work."},
		{"Speaker 2", 20, 45, "We need the native speech SDK wired into the recording flow."},
		{"Speaker 1", 45, 70, "Right. And the API credentials have to be stored securely."},
		{"Speaker 3", 70, 95, "Should we keep them in the platform keychain?"},
		{"Speaker 2", 95, 115, "Yes, that's the safest place on device."},
		{"Speaker 1", 115, 140, "We also need continuous recognition with conversation transcription."},
		{"Speaker 3", 140, 165, "Don't forget to enable speaker diarization."},
		{"Speaker 2", 165, 190, "And word-level timestamps, or the timeline feature has nothing to anchor on."},
		{"Speaker 1", 190, 215, "I'll build the recording manager and the transcription client."},
		{"Speaker 3", 215, 240, "Great. Let's meet tomorrow to review the first test run."},
	},
}

// SampleSession generates a mock meeting from one of the scripted
// conversations. The session's duration is the end of its last utterance, so
// short scripts do not report silence they don't contain.
func SampleSession(durationMinutes, conversationIndex int) *models.MeetingSession {
	script := conversations[conversationIndex%len(conversations)]
	startTime := time.Now().UTC().Add(-time.Duration(durationMinutes) * time.Minute)

	segments := make([]models.SpeechSegment, 0, len(script))
	for _, u := range script {
		segments = append(segments, segmentFrom(u, 0, startTime))
	}

	duration := float64(durationMinutes * 60)
	if len(segments) > 0 {
		duration = segments[len(segments)-1].EndTime
	}

	return newSession(startTime, duration, segments)
}

// LongSession generates a meeting of roughly the requested length by cycling
// the scripted conversations with a short pause between repeats, clamping the
// final utterance at the target duration. Useful for exercising many
// timeline windows.
func LongSession(durationMinutes int) *models.MeetingSession {
	target := float64(durationMinutes * 60)
	startTime := time.Now().UTC().Add(-time.Duration(durationMinutes) * time.Minute)

	var segments []models.SpeechSegment
	offset := 0.0
	cycle := 0

	for offset < target {
		script := conversations[cycle%len(conversations)]
		for _, u := range script {
			if offset+u.start >= target {
				break
			}
			clamped := u
			if offset+clamped.end > target {
				clamped.end = target - offset
			}
			segments = append(segments, segmentFrom(clamped, offset, startTime))
		}
		offset += script[len(script)-1].end + 5 // pause between repeats
		cycle++
	}

	return newSession(startTime, target, segments)
}

func segmentFrom(u scriptedUtterance, offset float64, meetingStart time.Time) models.SpeechSegment {
	return models.SpeechSegment{
		ID:         uuid.New(),
		SpeakerID:  u.speaker,
		Text:       u.text,
		StartTime:  offset + u.start,
		EndTime:    offset + u.end,
		Confidence: confidenceFor(u.text),
		Timestamp:  meetingStart.Add(time.Duration((offset + u.start) * float64(time.Second))),
	}
}

// confidenceFor derives a stable confidence in [0.92, 0.99] from the text.
func confidenceFor(text string) float64 {
	h := fnv.New32a()
	h.Write([]byte(text))
	return 0.92 + float64(h.Sum32()%8)/100
}

func newSession(startTime time.Time, duration float64, segments []models.SpeechSegment) *models.MeetingSession {
	participants := make(map[string]struct{})
	for _, seg := range segments {
		participants[seg.SpeakerID] = struct{}{}
	}
	names := make([]string, 0, len(participants))
	for p := range participants {
		names = append(names, p)
	}
	sort.Strings(names)

	end := startTime.Add(time.Duration(duration * float64(time.Second)))
	return &models.MeetingSession{
		ID:           uuid.New(),
		StartTime:    startTime,
		EndTime:      &end,
		Duration:     duration,
		Participants: names,
		Transcript:   segments,
	}
}
