package history

import (
	"context"
)

// TimelineProvider hands the engine an ordered, non-overlapping segment
// timeline for a conversation. The engine treats the returned slice as an
// immutable snapshot; an unknown conversation yields an empty slice, not an
// error, since absence of history is a normal state.
type TimelineProvider interface {
	Segments(ctx context.Context, conversationID string) ([]Segment, error)
}

// VersionedTimeline is an optional extension of TimelineProvider for
// providers that can report a per-conversation version which advances on
// every timeline change. The engine only caches filtered results for
// versioned providers: the version joins the cache key, so entries computed
// against an older timeline stop being referenced and age out.
type VersionedTimeline interface {
	TimelineProvider
	TimelineVersion(conversationID string) uint64
}

// SettingsStore persists conversation history settings. The engine writes
// through on every mutation and hydrates from Load at construction time.
type SettingsStore interface {
	Load(ctx context.Context) (map[string]*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// PreviewCache caches serialized filtered-history results. Entries are
// keyed by (conversation, participant, settings version, timeline version),
// so stale entries simply stop being referenced after a settings mutation or
// a timeline change and age out.
type PreviewCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}

// Tracer emits structured spans and events around engine operations.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error))
	Event(ctx context.Context, name string, attrs map[string]any)
}
