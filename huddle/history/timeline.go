package history

import (
	"context"
	"sort"
	"sync"
)

// StaticTimeline is an in-memory TimelineProvider. It keeps segments sorted
// by start time and hands out copies, so a filter call always sees an
// immutable snapshot even while the upstream segmenter keeps writing.
type StaticTimeline struct {
	mu       sync.RWMutex
	segments map[string][]Segment
	versions map[string]uint64
}

// NewStaticTimeline creates an empty in-memory timeline.
func NewStaticTimeline() *StaticTimeline {
	return &StaticTimeline{
		segments: make(map[string][]Segment),
		versions: make(map[string]uint64),
	}
}

// SetSegments replaces the timeline for a conversation. Segments are sorted
// by start time so callers do not have to pre-sort.
func (t *StaticTimeline) SetSegments(conversationID string, segments []Segment) {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments[conversationID] = sorted
	t.versions[conversationID]++
}

// Append adds a segment to the end of a conversation's timeline.
func (t *StaticTimeline) Append(conversationID string, segment Segment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.segments[conversationID] = append(t.segments[conversationID], segment)
	t.versions[conversationID]++
}

// TimelineVersion reports a counter that advances on every SetSegments or
// Append for the conversation. An unknown conversation reports zero.
func (t *StaticTimeline) TimelineVersion(conversationID string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.versions[conversationID]
}

// Segments returns a snapshot of the conversation's timeline. An unknown
// conversation yields an empty slice.
func (t *StaticTimeline) Segments(ctx context.Context, conversationID string) ([]Segment, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stored := t.segments[conversationID]
	snapshot := make([]Segment, len(stored))
	copy(snapshot, stored)
	return snapshot, nil
}

var _ VersionedTimeline = (*StaticTimeline)(nil)
