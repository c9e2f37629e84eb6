// Package gemini provides a summarization provider backed by the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"meeting-summary-service/internal/service/oracle"
)

const windowPrompt = `Analyze the following meeting transcript segment and provide a structured summary.

Time Range: %s
Speakers: %s

Transcript:
%s

Please provide:
1. Key points discussed (as a list of 2-4 concise bullet points)
2. Main topics (as a list of 2-4 topics)
3. Action items if any (as a list, empty if none identified)

Format your response as JSON with keys: key_points, topics, action_items

Example format:
{
    "key_points": ["Point 1", "Point 2"],
    "topics": ["Topic A", "Topic B"],
    "action_items": ["Action 1"]
}`

const meetingPrompt = `Based on this meeting transcript, provide an overall meeting summary:

%s

Provide:
1. A brief overall summary (2-3 sentences capturing the main purpose and outcomes)
2. Key decisions made during the meeting (as a list, empty if none)
3. Follow-up actions required (as a list, aggregated from all action items)

Format as JSON with keys: overall_summary, key_decisions, follow_up_actions

Example format:
{
    "overall_summary": "Brief 2-3 sentence summary here",
    "key_decisions": ["Decision 1", "Decision 2"],
    "follow_up_actions": ["Action 1", "Action 2"]
}`

// Config holds Gemini provider configuration.
type Config struct {
	APIKeys      []string // rotated on quota errors
	Model        string
	MaxRetries   int           // attempts per call on top of key rotation
	RetryBackoff time.Duration // base backoff between attempts
}

// Provider implements oracle.Oracle with Gemini generate-content calls.
// API keys are rotated when a key hits its quota.
type Provider struct {
	cfg    Config
	logger zerolog.Logger

	mu         sync.Mutex
	currentKey int
}

// New creates a Gemini provider. At least one API key is required.
func New(cfg Config, logger zerolog.Logger) (*Provider, error) {
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini provider requires at least one API key")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Provider{
		cfg:    cfg,
		logger: logger.With().Str("component", "oracle.gemini").Logger(),
	}, nil
}

func (p *Provider) Name() string { return "gemini" }

// SummarizeWindow asks Gemini for a window summary and parses the reply.
// A malformed reply is retried once; retrying a generator more than that
// rarely fixes a shape problem.
func (p *Provider) SummarizeWindow(ctx context.Context, transcript, timeRange string, speakers []string) (oracle.WindowSummary, error) {
	prompt := fmt.Sprintf(windowPrompt, timeRange, strings.Join(speakers, ", "), transcript)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := p.generate(ctx, prompt)
		if err != nil {
			return oracle.WindowSummary{}, err
		}
		out, err := oracle.ParseWindowJSON(raw)
		if err == nil {
			return out, nil
		}
		lastErr = err
		p.logger.Warn().Err(err).Str("timeRange", timeRange).Int("attempt", attempt+1).
			Msg("window reply did not parse, retrying once")
	}
	return oracle.WindowSummary{}, lastErr
}

// SummarizeMeeting asks Gemini for the overall summary and parses the reply.
func (p *Provider) SummarizeMeeting(ctx context.Context, transcript string) (oracle.MeetingSummary, error) {
	prompt := fmt.Sprintf(meetingPrompt, transcript)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		raw, err := p.generate(ctx, prompt)
		if err != nil {
			return oracle.MeetingSummary{}, err
		}
		out, err := oracle.ParseMeetingJSON(raw)
		if err == nil {
			return out, nil
		}
		lastErr = err
		p.logger.Warn().Err(err).Int("attempt", attempt+1).
			Msg("meeting reply did not parse, retrying once")
	}
	return oracle.MeetingSummary{}, lastErr
}

// generate sends the prompt to Gemini and returns the reply text. Rotates
// API keys on 429 / quota errors; other transport failures are retried with
// backoff up to MaxRetries before surfacing ErrUnavailable.
func (p *Provider) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.cfg.RetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", oracle.ErrUnavailable, ctx.Err())
			}
		}

		text, err := p.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", oracle.ErrUnavailable, lastErr)
}

func (p *Provider) generateOnce(ctx context.Context, prompt string) (string, error) {
	keys := len(p.cfg.APIKeys)

	for range keys {
		key := p.currentAPIKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			p.rotateKey()
			return "", fmt.Errorf("create client: %w", err)
		}

		result, err := client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(prompt), nil)
		if err != nil {
			if isQuotaError(err) {
				p.logger.Warn().Msg("API key rate limited, rotating")
				p.rotateKey()
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return "", fmt.Errorf("empty response from Gemini")
		}

		var text strings.Builder
		for _, part := range result.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
		return text.String(), nil
	}

	return "", fmt.Errorf("all API keys exhausted")
}

func (p *Provider) currentAPIKey() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.APIKeys[p.currentKey]
}

func (p *Provider) rotateKey() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentKey = (p.currentKey + 1) % len(p.cfg.APIKeys)
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
