package history

import (
	"fmt"
	"sort"
	"time"
)

// Summary is a conversation-level overview of the unfiltered timeline,
// independent of any single viewer's access.
type Summary struct {
	SegmentCount    int      `json:"segment_count"`
	TotalMessages   int      `json:"total_messages"`
	PrivateSegments int      `json:"private_segments"`
	TimeSpan        string   `json:"time_span"`
	Participants    []string `json:"participants"`
	AIAgents        []string `json:"ai_agents"`
}

// BuildSummary scans a timeline with no policy applied and aggregates
// counts plus the union of everyone seen across segments.
func BuildSummary(segments []Segment) Summary {
	summary := Summary{SegmentCount: len(segments)}

	participants := make(map[string]struct{})
	agents := make(map[string]struct{})

	for _, seg := range segments {
		summary.TotalMessages += seg.MessageCount
		if seg.IsPrivate {
			summary.PrivateSegments++
		}
		for _, p := range seg.Participants {
			participants[p] = struct{}{}
		}
		for _, a := range seg.AIAgents {
			agents[a] = struct{}{}
		}
	}

	summary.Participants = sortedKeys(participants)
	summary.AIAgents = sortedKeys(agents)
	summary.TimeSpan = formatTimeSpan(segments)

	return summary
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTimeSpan(segments []Segment) string {
	if len(segments) == 0 {
		return "no history"
	}
	start := segments[0].StartTime
	end := segments[len(segments)-1].EndTime
	return fmt.Sprintf("%s to %s",
		start.Format(time.RFC3339), end.Format(time.RFC3339))
}
