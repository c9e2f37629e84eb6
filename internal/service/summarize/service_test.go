package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"meeting-summary-service/internal/events"
	"meeting-summary-service/internal/models"
	"meeting-summary-service/internal/service/oracle"
	"meeting-summary-service/internal/service/oracle/mock"
)

// fakeOracle implements oracle.Oracle with scripted failures.
type fakeOracle struct {
	mu            sync.Mutex
	windowCalls   []string // time ranges, in call order
	meetingCalls  int
	failTimeRange string // window calls with this time range fail
	failWindowErr error
	failMeeting   error
}

func (f *fakeOracle) SummarizeWindow(_ context.Context, transcript, timeRange string, _ []string) (oracle.WindowSummary, error) {
	f.mu.Lock()
	f.windowCalls = append(f.windowCalls, timeRange)
	f.mu.Unlock()

	if timeRange == f.failTimeRange {
		return oracle.WindowSummary{}, f.failWindowErr
	}
	return oracle.WindowSummary{
		KeyPoints:   []string{"point for " + timeRange},
		Topics:      []string{"topic"},
		ActionItems: []string{},
	}, nil
}

func (f *fakeOracle) SummarizeMeeting(context.Context, string) (oracle.MeetingSummary, error) {
	f.mu.Lock()
	f.meetingCalls++
	f.mu.Unlock()

	if f.failMeeting != nil {
		return oracle.MeetingSummary{}, f.failMeeting
	}
	return oracle.MeetingSummary{
		Overall:         "overall narrative",
		KeyDecisions:    []string{"decision"},
		FollowUpActions: []string{"follow up"},
	}, nil
}

func (f *fakeOracle) Name() string { return "fake" }

func disabledPublisher() *events.Publisher {
	return events.New(&events.Config{Enabled: false})
}

func newService(o oracle.Oracle, windowSeconds float64) *Service {
	return New(o, disabledPublisher(), Config{WindowSeconds: windowSeconds}, zerolog.Nop())
}

func session(duration float64, segs ...models.SpeechSegment) *models.MeetingSession {
	return &models.MeetingSession{
		ID:         uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"),
		StartTime:  time.Date(2025, 10, 30, 10, 0, 0, 0, time.UTC),
		Duration:   duration,
		Transcript: segs,
	}
}

func utterance(speaker, text string, start, end float64) models.SpeechSegment {
	return models.SpeechSegment{
		ID:         uuid.New(),
		SpeakerID:  speaker,
		Text:       text,
		StartTime:  start,
		EndTime:    end,
		Confidence: 0.95,
	}
}

func TestSummarize_TwoWindowScenario(t *testing.T) {
	// 600-second session, two speakers, width 300: exactly two windows with
	// the documented labels.
	fake := &fakeOracle{}
	svc := newService(fake, 300)

	resp, err := svc.Summarize(context.Background(), session(600,
		utterance("Speaker 1", "Good morning everyone.", 0, 15),
		utterance("Speaker 2", "Let us start.", 15, 30),
		utterance("Speaker 1", "Second half begins.", 300, 320),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.TimelineSummaries) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(resp.TimelineSummaries))
	}
	if resp.TimelineSummaries[0].TimeRange != "0:00 - 5:00" {
		t.Errorf("window 0 label: got %q", resp.TimelineSummaries[0].TimeRange)
	}
	if resp.TimelineSummaries[1].TimeRange != "5:00 - 10:00" {
		t.Errorf("window 1 label: got %q", resp.TimelineSummaries[1].TimeRange)
	}
	if resp.TotalDuration != 600 {
		t.Errorf("expected total duration 600, got %g", resp.TotalDuration)
	}
	if resp.MeetingID != "550e8400-e29b-41d4-a716-446655440001" {
		t.Errorf("unexpected meeting id %q", resp.MeetingID)
	}
	if resp.OverallSummary != "overall narrative" {
		t.Errorf("unexpected overall summary %q", resp.OverallSummary)
	}
	if fake.meetingCalls != 1 {
		t.Errorf("expected exactly one overall call, got %d", fake.meetingCalls)
	}

	got := resp.TimelineSummaries[0].Speakers
	want := []string{"Speaker 1", "Speaker 2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("window 0 speakers: got %v, want %v", got, want)
	}
}

func TestSummarize_EmptySessionZeroDuration(t *testing.T) {
	fake := &fakeOracle{}
	svc := newService(fake, 300)

	resp, err := svc.Summarize(context.Background(), session(0))
	if err != nil {
		t.Fatalf("zero-duration empty session must not error: %v", err)
	}

	if len(resp.TimelineSummaries) != 1 {
		t.Fatalf("expected exactly 1 window, got %d", len(resp.TimelineSummaries))
	}
	w := resp.TimelineSummaries[0]
	if w.StartTime != 0 || w.EndTime != 0 {
		t.Errorf("expected [0,0) window, got [%g,%g)", w.StartTime, w.EndTime)
	}
	if len(w.KeyPoints) != 0 || len(w.Topics) != 0 || len(w.ActionItems) != 0 || len(w.Speakers) != 0 {
		t.Error("empty window must have empty summary fields")
	}
	if w.Degraded {
		t.Error("empty window is not a degradation")
	}
	if len(fake.windowCalls) != 0 || fake.meetingCalls != 0 {
		t.Errorf("empty session must not invoke the oracle, got %d window + %d meeting calls",
			len(fake.windowCalls), fake.meetingCalls)
	}
	if resp.Degraded {
		t.Error("empty session response must not be degraded")
	}
}

func TestSummarize_EmptyWindowsNotSkippedNorCalled(t *testing.T) {
	// Speech only in the first of four windows: the timeline still has four
	// entries and only one window-mode oracle call is made.
	fake := &fakeOracle{}
	svc := newService(fake, 300)

	resp, err := svc.Summarize(context.Background(), session(1000,
		utterance("Speaker 1", "Only speech here.", 10, 25),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.TimelineSummaries) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(resp.TimelineSummaries))
	}
	if len(fake.windowCalls) != 1 {
		t.Errorf("expected 1 window oracle call, got %d", len(fake.windowCalls))
	}

	last := resp.TimelineSummaries[3]
	if last.StartTime != 900 || last.EndTime != 1000 {
		t.Errorf("expected clamped final window [900,1000), got [%g,%g)", last.StartTime, last.EndTime)
	}
}

func TestSummarize_WindowFailureIsIsolated(t *testing.T) {
	fake := &fakeOracle{
		failTimeRange: "5:00 - 10:00",
		failWindowErr: fmt.Errorf("%w: boom", oracle.ErrUnavailable),
	}
	svc := newService(fake, 300)

	resp, err := svc.Summarize(context.Background(), session(900,
		utterance("Speaker 1", "first window", 0, 20),
		utterance("Speaker 1", "second window", 400, 420),
		utterance("Speaker 2", "third window", 700, 720),
	))
	if err != nil {
		t.Fatalf("per-window failure must not fail the request: %v", err)
	}

	if len(resp.TimelineSummaries) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(resp.TimelineSummaries))
	}

	if resp.TimelineSummaries[0].Degraded {
		t.Error("window 0 should have succeeded")
	}
	if !resp.TimelineSummaries[1].Degraded {
		t.Error("window 1 should be degraded")
	}
	if resp.TimelineSummaries[1].DegradedReason == "" {
		t.Error("degraded window must carry a reason")
	}
	if got := resp.TimelineSummaries[1].Speakers; !reflect.DeepEqual(got, []string{"Speaker 1"}) {
		t.Errorf("degraded window keeps its speaker set, got %v", got)
	}
	if resp.TimelineSummaries[2].Degraded {
		t.Error("window 2 should have succeeded")
	}
	if resp.Degraded {
		t.Error("window degradation must not mark the overall response degraded")
	}
}

func TestSummarize_TimedOutWindowsKeepSpeakers(t *testing.T) {
	// With one slot and an oracle that never answers, one window degrades
	// inside the oracle call and the other while still waiting for the slot.
	// Both entries must keep their speaker sets.
	svc := New(&stuckOracle{}, disabledPublisher(), Config{
		WindowSeconds:  300,
		MaxConcurrency: 1,
		RequestTimeout: 30 * time.Millisecond,
	}, zerolog.Nop())

	resp, err := svc.Summarize(context.Background(), session(600,
		utterance("Speaker 1", "first window", 0, 20),
		utterance("Speaker 2", "second window", 320, 340),
	))
	if err != nil {
		t.Fatalf("timed-out windows must degrade, not error: %v", err)
	}

	wantSpeakers := [][]string{{"Speaker 1"}, {"Speaker 2"}}
	for i, w := range resp.TimelineSummaries {
		if !w.Degraded {
			t.Errorf("window %d should be degraded", i)
		}
		if w.DegradedReason != "request canceled" {
			t.Errorf("window %d reason: got %q", i, w.DegradedReason)
		}
		if !reflect.DeepEqual(w.Speakers, wantSpeakers[i]) {
			t.Errorf("window %d speakers: got %v, want %v", i, w.Speakers, wantSpeakers[i])
		}
	}
}

func TestSummarize_OverallFailureKeepsWindows(t *testing.T) {
	fake := &fakeOracle{failMeeting: fmt.Errorf("%w: no parse", oracle.ErrMalformed)}
	svc := newService(fake, 300)

	resp, err := svc.Summarize(context.Background(), session(600,
		utterance("Speaker 1", "hello", 0, 10),
		utterance("Speaker 2", "world", 320, 330),
	))
	if err != nil {
		t.Fatalf("overall failure must degrade, not error: %v", err)
	}

	if !resp.Degraded {
		t.Fatal("expected degraded response")
	}
	if resp.DegradedReason == "" {
		t.Error("degraded response must carry a reason")
	}
	if resp.OverallSummary != "" {
		t.Errorf("degraded narrative must be empty, got %q", resp.OverallSummary)
	}
	if len(resp.TimelineSummaries) != 2 {
		t.Fatalf("window summaries must survive, got %d", len(resp.TimelineSummaries))
	}
	for i, w := range resp.TimelineSummaries {
		if w.Degraded {
			t.Errorf("window %d must not be degraded", i)
		}
	}
}

func TestSummarize_InvalidInputRejectedBeforeOracle(t *testing.T) {
	fake := &fakeOracle{}
	svc := newService(fake, 300)

	_, err := svc.Summarize(context.Background(), session(-10))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := err.(*models.ValidationError); !ok {
		t.Errorf("expected *models.ValidationError, got %T", err)
	}
	if len(fake.windowCalls) != 0 || fake.meetingCalls != 0 {
		t.Error("invalid input must be rejected before any oracle call")
	}
}

func TestSummarize_OrderRestoredUnderConcurrency(t *testing.T) {
	// slowFirstOracle delays early windows so later windows complete first;
	// the assembled timeline must still be chronological.
	fake := &slowFirstOracle{}
	svc := New(fake, disabledPublisher(), Config{WindowSeconds: 100, MaxConcurrency: 8}, zerolog.Nop())

	var segs []models.SpeechSegment
	for i := 0; i < 6; i++ {
		start := float64(i * 100)
		segs = append(segs, utterance("Speaker 1", fmt.Sprintf("window %d content", i), start, start+10))
	}

	resp, err := svc.Summarize(context.Background(), session(600, segs...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, w := range resp.TimelineSummaries {
		wantStart := float64(i * 100)
		if w.StartTime != wantStart {
			t.Errorf("window %d out of order: start %g, want %g", i, w.StartTime, wantStart)
		}
		want := fmt.Sprintf("echo: window %d content", i)
		if len(w.KeyPoints) != 1 || w.KeyPoints[0] != want {
			t.Errorf("window %d carries wrong content: %v", i, w.KeyPoints)
		}
	}
}

func TestSummarize_MockIdempotent(t *testing.T) {
	svc := newService(mock.New(), 300)

	s := session(600,
		utterance("Speaker 1", "Let us test the summarization prototype.", 0, 20),
		utterance("Speaker 2", "The integration timeline looks fine.", 320, 340),
	)

	first, err := svc.Summarize(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Summarize(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// GeneratedAt is the assembly timestamp; everything else must be
	// byte-identical across runs.
	first.GeneratedAt = second.GeneratedAt
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("mock pipeline not idempotent:\nfirst:  %s\nsecond: %s", a, b)
	}
}

func TestTimeRangeLabel(t *testing.T) {
	tests := []struct {
		start, end float64
		want       string
	}{
		{0, 300, "0:00 - 5:00"},
		{300, 600, "5:00 - 10:00"},
		{900, 1000, "15:00 - 16:40"},
		{0, 0, "0:00 - 0:00"},
		{3600, 3905, "1:00:00 - 1:05:05"},
	}

	for _, tt := range tests {
		if got := timeRangeLabel(tt.start, tt.end); got != tt.want {
			t.Errorf("timeRangeLabel(%g, %g) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestBuildTranscript(t *testing.T) {
	got := buildTranscript([]models.SpeechSegment{
		{SpeakerID: "Speaker 1", Text: "Hello."},
		{SpeakerID: "Speaker 2", Text: "Hi there."},
	})
	want := "Speaker 1: Hello.\nSpeaker 2: Hi there."
	if got != want {
		t.Errorf("buildTranscript = %q, want %q", got, want)
	}
}

// stuckOracle blocks every call until the context expires.
type stuckOracle struct{}

func (s *stuckOracle) SummarizeWindow(ctx context.Context, _, _ string, _ []string) (oracle.WindowSummary, error) {
	<-ctx.Done()
	return oracle.WindowSummary{}, ctx.Err()
}

func (s *stuckOracle) SummarizeMeeting(ctx context.Context, _ string) (oracle.MeetingSummary, error) {
	<-ctx.Done()
	return oracle.MeetingSummary{}, ctx.Err()
}

func (s *stuckOracle) Name() string { return "stuck" }

// slowFirstOracle echoes window content back and sleeps longer for earlier
// windows, inverting natural completion order.
type slowFirstOracle struct{}

func (s *slowFirstOracle) SummarizeWindow(_ context.Context, transcript, timeRange string, _ []string) (oracle.WindowSummary, error) {
	if strings.HasPrefix(timeRange, "0:00") {
		time.Sleep(50 * time.Millisecond)
	} else if strings.HasPrefix(timeRange, "1:40") {
		time.Sleep(25 * time.Millisecond)
	}
	text := transcript
	if _, rest, ok := strings.Cut(transcript, ": "); ok {
		text = rest
	}
	return oracle.WindowSummary{KeyPoints: []string{"echo: " + text}}, nil
}

func (s *slowFirstOracle) SummarizeMeeting(context.Context, string) (oracle.MeetingSummary, error) {
	return oracle.MeetingSummary{Overall: "ok"}, nil
}

func (s *slowFirstOracle) Name() string { return "slow" }
