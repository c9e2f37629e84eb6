// Command summaryclient generates a synthetic meeting session and sends it
// to a running service instance, printing the returned timeline summary.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"meeting-summary-service/internal/models"
	"meeting-summary-service/internal/service/fixture"
)

func main() {
	addr := flag.String("addr", "http://localhost:8000", "service base URL")
	minutes := flag.Int("minutes", 10, "synthetic meeting length in minutes")
	long := flag.Bool("long", false, "generate a long multi-window meeting")
	flag.Parse()

	var session *models.MeetingSession
	if *long {
		session = fixture.LongSession(*minutes)
	} else {
		session = fixture.SampleSession(*minutes, 0)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		log.Fatalf("marshal session: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *addr+"/api/meetings/summarize", bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Printf("summarizing %d-segment session %s", len(session.Transcript), session.ID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		log.Fatalf("server returned %d: %v", resp.StatusCode, errBody)
	}

	var summary models.MeetingSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		log.Fatalf("decode response: %v", err)
	}

	fmt.Printf("Meeting %s (%.0fs, %d windows)\n",
		summary.MeetingID, summary.TotalDuration, len(summary.TimelineSummaries))
	for _, w := range summary.TimelineSummaries {
		fmt.Printf("\n[%s] speakers: %v\n", w.TimeRange, w.Speakers)
		for _, p := range w.KeyPoints {
			fmt.Printf("  - %s\n", p)
		}
		if w.Degraded {
			fmt.Printf("  (degraded: %s)\n", w.DegradedReason)
		}
	}
	fmt.Printf("\nOverall: %s\n", summary.OverallSummary)
	for _, d := range summary.KeyDecisions {
		fmt.Printf("  decision: %s\n", d)
	}
	for _, f := range summary.FollowUpActions {
		fmt.Printf("  follow-up: %s\n", f)
	}
}
