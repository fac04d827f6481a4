package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fixtureNow anchors the relative fixture so tests are deterministic.
var fixtureNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fixtureSegments is the canonical four-segment timeline:
// seg1 25 msgs non-private 4h-3h ago, seg2 15 msgs private 3h-2h ago,
// seg3 30 msgs non-private 2h-1h ago, seg4 20 msgs non-private 1h-now.
func fixtureSegments() []Segment {
	return []Segment{
		{
			ID:             "seg1",
			ConversationID: "conv1",
			StartTime:      fixtureNow.Add(-4 * time.Hour),
			EndTime:        fixtureNow.Add(-3 * time.Hour),
			MessageCount:   25,
			Participants:   []string{"alice", "bob"},
		},
		{
			ID:             "seg2",
			ConversationID: "conv1",
			StartTime:      fixtureNow.Add(-3 * time.Hour),
			EndTime:        fixtureNow.Add(-2 * time.Hour),
			MessageCount:   15,
			IsPrivate:      true,
			Participants:   []string{"alice", "bob"},
		},
		{
			ID:             "seg3",
			ConversationID: "conv1",
			StartTime:      fixtureNow.Add(-2 * time.Hour),
			EndTime:        fixtureNow.Add(-1 * time.Hour),
			MessageCount:   30,
			Participants:   []string{"alice", "bob", "carol"},
			AIAgents:       []string{"scribe"},
		},
		{
			ID:             "seg4",
			ConversationID: "conv1",
			StartTime:      fixtureNow.Add(-1 * time.Hour),
			EndTime:        fixtureNow,
			MessageCount:   20,
			Participants:   []string{"alice", "carol"},
			AIAgents:       []string{"scribe"},
		},
	}
}

func segmentIDs(segments []Segment) []string {
	ids := make([]string, 0, len(segments))
	for _, seg := range segments {
		ids = append(ids, seg.ID)
	}
	return ids
}

func TestFilterFullRespectsPrivate(t *testing.T) {
	result := FilterTimeline(fixtureSegments(), AccessFull{}, true, fixtureNow)

	assert.Equal(t, []string{"seg1", "seg3", "seg4"}, segmentIDs(result.Segments))
	assert.Equal(t, 90, result.TotalMessages)
	assert.Equal(t, 75, result.AccessibleMessages)
	assert.Equal(t, 1, result.HiddenSegments)
	assert.Equal(t, fixtureNow.Add(-4*time.Hour), result.TimeRange.Start)
	assert.Equal(t, fixtureNow, result.TimeRange.End)
}

func TestFilterFullPrivateNotRespected(t *testing.T) {
	result := FilterTimeline(fixtureSegments(), AccessFull{}, false, fixtureNow)

	assert.Equal(t, []string{"seg1", "seg2", "seg3", "seg4"}, segmentIDs(result.Segments))
	assert.Equal(t, 90, result.AccessibleMessages)
	assert.Equal(t, 0, result.HiddenSegments)
}

func TestFilterNone(t *testing.T) {
	result := FilterTimeline(fixtureSegments(), AccessNone{}, true, fixtureNow)

	assert.Empty(t, result.Segments)
	assert.Equal(t, 0, result.AccessibleMessages)
	assert.Equal(t, 90, result.TotalMessages)
	// Privacy pass still runs before the access-level pass
	assert.Equal(t, 1, result.HiddenSegments)
	// Degenerate range anchored at now
	assert.Equal(t, fixtureNow, result.TimeRange.Start)
	assert.Equal(t, fixtureNow, result.TimeRange.End)
}

func TestFilterLimitedMessageCount(t *testing.T) {
	count := 50
	result := FilterTimeline(fixtureSegments(), AccessLimited{MessageCount: &count}, true, fixtureNow)

	// 30+20=50 fits exactly; adding seg1 (25) would exceed the ceiling
	assert.Equal(t, []string{"seg3", "seg4"}, segmentIDs(result.Segments))
	assert.Equal(t, 50, result.AccessibleMessages)
}

func TestFilterLimitedMessageCountStopsAtExceedingSegment(t *testing.T) {
	count := 49
	result := FilterTimeline(fixtureSegments(), AccessLimited{MessageCount: &count}, true, fixtureNow)

	// seg3 would push the running total to 50 > 49; segments are never split
	assert.Equal(t, []string{"seg4"}, segmentIDs(result.Segments))
	assert.Equal(t, 20, result.AccessibleMessages)
}

func TestFilterLimitedCountThenTime(t *testing.T) {
	count := 50
	level := AccessLimited{
		MessageCount: &count,
		TimeRange:    &TimeWindow{Value: 30, Unit: UnitMinutes},
	}
	result := FilterTimeline(fixtureSegments(), level, true, fixtureNow)

	// The ceiling selects [seg3, seg4] first; the 30 minute window then
	// drops seg3, whose end falls before now-30m. The constraints are
	// sequential: a time-first evaluation would have admitted different
	// segments under the ceiling.
	assert.Equal(t, []string{"seg4"}, segmentIDs(result.Segments))
	assert.Equal(t, 20, result.AccessibleMessages)
}

func TestFilterLimitedTimeOnly(t *testing.T) {
	level := AccessLimited{TimeRange: &TimeWindow{Value: 2, Unit: UnitHours}}
	result := FilterTimeline(fixtureSegments(), level, true, fixtureNow)

	// seg1 ended three hours ago, before the two hour cutoff
	assert.Equal(t, []string{"seg3", "seg4"}, segmentIDs(result.Segments))
}

func TestFilterLimitedUnbounded(t *testing.T) {
	result := FilterTimeline(fixtureSegments(), AccessLimited{}, true, fixtureNow)

	// Neither ceiling nor window set: behaves like full
	assert.Equal(t, []string{"seg1", "seg3", "seg4"}, segmentIDs(result.Segments))
}

func TestFilterCustomPartialOverlapExcluded(t *testing.T) {
	level := AccessCustom{
		Start: fixtureNow.Add(-210 * time.Minute), // 3.5h ago
		End:   fixtureNow.Add(-90 * time.Minute),  // 1.5h ago
	}
	result := FilterTimeline(fixtureSegments(), level, true, fixtureNow)

	// seg1 and seg3 only partially overlap the window; nothing is wholly
	// contained, and segments are never split to fit
	assert.Empty(t, result.Segments)
	assert.Equal(t, 0, result.AccessibleMessages)
}

func TestFilterCustomWhollyContained(t *testing.T) {
	level := AccessCustom{
		Start: fixtureNow.Add(-2 * time.Hour),
		End:   fixtureNow,
	}
	result := FilterTimeline(fixtureSegments(), level, true, fixtureNow)

	assert.Equal(t, []string{"seg3", "seg4"}, segmentIDs(result.Segments))
	assert.Equal(t, 50, result.AccessibleMessages)
}

func TestFilterEmptyTimeline(t *testing.T) {
	result := FilterTimeline(nil, AccessFull{}, true, fixtureNow)

	assert.Empty(t, result.Segments)
	assert.Equal(t, 0, result.TotalMessages)
	assert.Equal(t, 0, result.AccessibleMessages)
	assert.Equal(t, 0, result.HiddenSegments)
	assert.Equal(t, fixtureNow, result.TimeRange.Start)
	assert.Equal(t, fixtureNow, result.TimeRange.End)
}

func TestFilterPrivateNeverVisible(t *testing.T) {
	count := 1000
	levels := []AccessLevel{
		AccessFull{},
		AccessLimited{MessageCount: &count},
		AccessCustom{Start: fixtureNow.Add(-24 * time.Hour), End: fixtureNow},
	}

	for _, level := range levels {
		result := FilterTimeline(fixtureSegments(), level, true, fixtureNow)
		for _, seg := range result.Segments {
			assert.False(t, seg.IsPrivate, "private segment leaked under %s access", level.Kind())
		}
	}
}
