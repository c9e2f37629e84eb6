// Package mock provides a deterministic summarization provider for running
// the pipeline without credentials. Given identical input it produces
// byte-identical output, which keeps fixture-driven tests reproducible.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"meeting-summary-service/internal/service/oracle"
)

// topicKeywords maps transcript keywords to display topics. Matching is
// case-insensitive on the whole transcript block.
var topicKeywords = []struct {
	keyword string
	topic   string
}{
	{"speech", "Speech Recognition"},
	{"diarization", "Speaker Diarization"},
	{"summar", "Summarization"},
	{"timeline", "Timeline Analysis"},
	{"integration", "Integration"},
	{"prototype", "Prototyping"},
	{"test", "Testing"},
	{"credential", "Credentials"},
	{"deadline", "Scheduling"},
}

var defaultTopics = []string{"General Discussion", "Planning"}

var cannedActionItems = []string{
	"Prepare mock data for testing",
	"Review progress in next meeting",
}

var cannedDecisions = []string{
	"Build the backend prototype first",
	"Summarize in five-minute timeline windows",
	"Validate with mock data before enabling the live provider",
}

// Provider implements oracle.Oracle with content-derived canned responses.
type Provider struct{}

// New creates a deterministic mock provider.
func New() *Provider {
	return &Provider{}
}

func (p *Provider) Name() string { return "mock" }

// SummarizeWindow derives key points from the first utterances of the window
// and topics from keyword matches, so the output tracks the input content
// without any external call.
func (p *Provider) SummarizeWindow(_ context.Context, transcript, _ string, _ []string) (oracle.WindowSummary, error) {
	lines := utteranceLines(transcript)

	keyPoints := make([]string, 0, 3)
	for _, line := range lines {
		if len(keyPoints) == 3 {
			break
		}
		keyPoints = append(keyPoints, stripSpeakerPrefix(line))
	}

	out := oracle.WindowSummary{
		KeyPoints:   keyPoints,
		Topics:      matchTopics(transcript, 4),
		ActionItems: []string{},
	}

	lower := strings.ToLower(transcript)
	if strings.Contains(lower, "test") || strings.Contains(lower, "action") || strings.Contains(lower, "next") {
		out.ActionItems = append([]string{}, cannedActionItems...)
	}

	return out, nil
}

// SummarizeMeeting produces a short canned narrative parameterized by the
// transcript's size and topics.
func (p *Provider) SummarizeMeeting(_ context.Context, transcript string) (oracle.MeetingSummary, error) {
	lines := utteranceLines(transcript)
	topics := matchTopics(transcript, 3)

	overall := fmt.Sprintf(
		"Team meeting covering %d transcript entries. Main topics included %s. Agreed on implementation approach and testing strategy.",
		len(lines), strings.Join(topics, ", "),
	)

	return oracle.MeetingSummary{
		Overall:         overall,
		KeyDecisions:    append([]string{}, cannedDecisions...),
		FollowUpActions: append([]string{}, cannedActionItems...),
	}, nil
}

func utteranceLines(transcript string) []string {
	var out []string
	for _, line := range strings.Split(transcript, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func stripSpeakerPrefix(line string) string {
	if _, rest, ok := strings.Cut(line, ": "); ok {
		return rest
	}
	return line
}

func matchTopics(transcript string, max int) []string {
	lower := strings.ToLower(transcript)

	var topics []string
	for _, tk := range topicKeywords {
		if len(topics) == max {
			break
		}
		if strings.Contains(lower, tk.keyword) {
			topics = append(topics, tk.topic)
		}
	}
	if len(topics) == 0 {
		topics = append(topics, defaultTopics...)
	}
	sort.Strings(topics)
	return topics
}
