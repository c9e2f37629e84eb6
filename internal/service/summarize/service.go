// Package summarize runs the summarization pipeline: split the transcript
// into timeline windows, summarize each window through the oracle, then
// aggregate the whole meeting into the final response.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"meeting-summary-service/internal/events"
	"meeting-summary-service/internal/models"
	"meeting-summary-service/internal/observability/metrics"
	"meeting-summary-service/internal/service/oracle"
	"meeting-summary-service/internal/service/timeline"
)

// Config holds pipeline tuning knobs.
type Config struct {
	WindowSeconds  float64       // timeline window width
	MaxConcurrency int           // in-flight oracle calls per request
	RequestTimeout time.Duration // bounds one whole summarization request
}

// DefaultConfig returns the pipeline defaults: five-minute windows, four
// concurrent oracle calls, one minute per request.
func DefaultConfig() Config {
	return Config{
		WindowSeconds:  300,
		MaxConcurrency: 4,
		RequestTimeout: time.Minute,
	}
}

// Service is the summarization pipeline. It holds no per-request state and
// is safe for concurrent requests.
type Service struct {
	oracle    oracle.Oracle
	publisher *events.Publisher
	cfg       Config
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// New constructs the pipeline around the given provider. publisher may be a
// disabled publisher; it is never nil-checked per call.
func New(o oracle.Oracle, publisher *events.Publisher, cfg Config, logger zerolog.Logger) *Service {
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = DefaultConfig().WindowSeconds
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Service{
		oracle:    o,
		publisher: publisher,
		cfg:       cfg,
		metrics:   metrics.DefaultMetrics,
		logger:    logger.With().Str("component", "summarize").Logger(),
	}
}

// WindowSeconds reports the configured window width.
func (s *Service) WindowSeconds() float64 { return s.cfg.WindowSeconds }

// Summarize validates the session and runs the full pipeline. Window-level
// oracle failures degrade only that window; an overall-summary failure
// degrades the narrative fields but keeps the computed window summaries.
// Only invalid input or a segmenter defect produce an error.
func (s *Service) Summarize(ctx context.Context, session *models.MeetingSession) (*models.MeetingSummaryResponse, error) {
	start := time.Now()
	s.metrics.RecordSummaryStart()

	if err := session.Validate(); err != nil {
		s.metrics.RecordSummaryFailed("invalid_input")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	windows, err := timeline.Split(session, s.cfg.WindowSeconds)
	if err != nil {
		if errors.Is(err, timeline.ErrInvalidWindowWidth) || errors.Is(err, timeline.ErrTooManyWindows) {
			s.metrics.RecordSummaryFailed("invalid_input")
		} else {
			s.metrics.RecordSummaryFailed("internal")
		}
		return nil, err
	}

	logger := s.logger.With().Str("meetingId", session.ID.String()).Logger()
	logger.Info().
		Float64("duration", session.Duration).
		Int("segments", len(session.Transcript)).
		Int("windows", len(windows)).
		Msg("summarizing meeting")

	summaries := s.summarizeWindows(ctx, windows)

	resp := &models.MeetingSummaryResponse{
		MeetingID:         session.ID.String(),
		GeneratedAt:       time.Now().UTC(),
		TotalDuration:     session.Duration,
		TimelineSummaries: summaries,
		KeyDecisions:      []string{},
		FollowUpActions:   []string{},
	}
	s.aggregate(ctx, session, resp)

	degradedWindows := 0
	for _, ts := range summaries {
		if ts.Degraded {
			degradedWindows++
		}
	}
	degraded := resp.Degraded || degradedWindows > 0
	s.metrics.RecordSummaryEnd(degraded, time.Since(start).Seconds())

	logger.Info().
		Int("degradedWindows", degradedWindows).
		Bool("degradedOverall", resp.Degraded).
		Dur("elapsed", time.Since(start)).
		Msg("meeting summarized")

	s.publisher.PublishSummaryGenerated(ctx, events.SummaryGenerated{
		MeetingID:       resp.MeetingID,
		TotalDuration:   resp.TotalDuration,
		WindowCount:     len(summaries),
		DegradedWindows: degradedWindows,
		DegradedOverall: resp.Degraded,
		GeneratedAt:     resp.GeneratedAt.UnixMilli(),
	})

	return resp, nil
}

// summarizeWindows fans the windows out to the oracle under the concurrency
// limit. Results are written into an index-addressed slice, so chronological
// order is a postcondition regardless of completion order.
func (s *Service) summarizeWindows(ctx context.Context, windows []models.TimeWindow) []models.TimelineSummary {
	summaries := make([]models.TimelineSummary, len(windows))
	sem := newSemaphore(s.cfg.MaxConcurrency)

	var wg sync.WaitGroup
	for i := range windows {
		w := &windows[i]

		// Empty window: correct label, empty fields, no oracle call.
		if len(w.Segments) == 0 {
			summaries[w.Index] = emptyWindowSummary(w)
			s.metrics.RecordWindow(true, false)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sem.acquire(ctx); err != nil {
				summaries[w.Index] = degradedWindowSummary(w, err)
				s.metrics.RecordWindow(false, true)
				return
			}
			defer sem.release()
			summaries[w.Index] = s.summarizeWindow(ctx, w)
		}()
	}
	wg.Wait()

	return summaries
}

// summarizeWindow runs one window-mode oracle call and maps the result. A
// failed call yields a degraded entry instead of an error so sibling windows
// are unaffected.
func (s *Service) summarizeWindow(ctx context.Context, w *models.TimeWindow) models.TimelineSummary {
	label := timeRangeLabel(w.Start, w.End)
	speakers := windowSpeakers(w.Segments)
	transcript := buildTranscript(w.Segments)

	start := time.Now()
	result, err := s.oracle.SummarizeWindow(ctx, transcript, label, speakers)
	s.metrics.RecordOracleCall(s.oracle.Name(), "window", classifyOracleError(err), time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn().Err(err).Str("timeRange", label).Msg("window summary degraded")
		s.metrics.RecordWindow(false, true)
		return degradedWindowSummary(w, err)
	}

	s.metrics.RecordWindow(false, false)
	return models.TimelineSummary{
		TimeRange:   label,
		StartTime:   w.Start,
		EndTime:     w.End,
		Speakers:    speakers,
		KeyPoints:   orEmpty(result.KeyPoints),
		Topics:      orEmpty(result.Topics),
		ActionItems: orEmpty(result.ActionItems),
	}
}

// aggregate runs the overall-mode oracle call over the full transcript and
// fills the narrative fields in place. On failure the response keeps the
// window summaries and carries an explicit degradation marker.
func (s *Service) aggregate(ctx context.Context, session *models.MeetingSession, resp *models.MeetingSummaryResponse) {
	if len(session.Transcript) == 0 {
		return
	}

	transcript := buildTranscript(session.Transcript)

	start := time.Now()
	result, err := s.oracle.SummarizeMeeting(ctx, transcript)
	s.metrics.RecordOracleCall(s.oracle.Name(), "overall", classifyOracleError(err), time.Since(start).Seconds())

	if err != nil {
		s.logger.Warn().Err(err).Msg("overall summary degraded")
		resp.Degraded = true
		resp.DegradedReason = degradationReason(err)
		return
	}

	resp.OverallSummary = result.Overall
	resp.KeyDecisions = orEmpty(result.KeyDecisions)
	resp.FollowUpActions = orEmpty(result.FollowUpActions)
}

// buildTranscript concatenates segments into a speaker-prefixed text block.
func buildTranscript(segments []models.SpeechSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(seg.SpeakerID)
		b.WriteString(": ")
		b.WriteString(seg.Text)
	}
	return b.String()
}

func windowSpeakers(segments []models.SpeechSegment) []string {
	session := models.MeetingSession{Transcript: segments}
	if sp := session.Speakers(); sp != nil {
		return sp
	}
	return []string{}
}

func emptyWindowSummary(w *models.TimeWindow) models.TimelineSummary {
	return models.TimelineSummary{
		TimeRange:   timeRangeLabel(w.Start, w.End),
		StartTime:   w.Start,
		EndTime:     w.End,
		Speakers:    []string{},
		KeyPoints:   []string{},
		Topics:      []string{},
		ActionItems: []string{},
	}
}

// degradedWindowSummary keeps the window's label and speakers so a degraded
// entry still tells the caller who was talking and when.
func degradedWindowSummary(w *models.TimeWindow, err error) models.TimelineSummary {
	out := emptyWindowSummary(w)
	out.Speakers = windowSpeakers(w.Segments)
	out.Degraded = true
	out.DegradedReason = degradationReason(err)
	return out
}

func degradationReason(err error) string {
	switch {
	case errors.Is(err, oracle.ErrUnavailable):
		return "provider unavailable"
	case errors.Is(err, oracle.ErrMalformed):
		return "provider response did not parse"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return fmt.Sprintf("summarization failed: %v", err)
	}
}

func classifyOracleError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, oracle.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, oracle.ErrMalformed):
		return "malformed"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
