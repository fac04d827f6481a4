package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/huddlehq/huddle/huddle/config"
)

// Engine is the entry point for the history access subsystem. It composes
// the policy store, the timeline provider, and the segmentation filter, and
// carries the preview cache, tracing, and metrics around them.
//
// Engines are plain values created by NewEngine; there is no process-wide
// instance, so independent engines can coexist in tests.
type Engine struct {
	cfg *config.HistoryConfig

	policies *PolicyStore
	timeline TimelineProvider
	// versions is the timeline's versioned view; set only when the provider
	// implements VersionedTimeline, and required for caching.
	versions VersionedTimeline

	cache   PreviewCache
	tracer  Tracer
	metrics *MetricsCollector
	logger  zerolog.Logger
	clock   func() time.Time
}

// EngineConfig holds all dependencies for initializing the engine.
type EngineConfig struct {
	Config   *config.HistoryConfig
	Timeline TimelineProvider
	Logger   zerolog.Logger

	// Optional overrides for testing/customization
	Settings SettingsStore
	Cache    PreviewCache
	Tracer   Tracer
	Clock    func() time.Time
}

// NewEngine creates a fully configured history access engine and hydrates
// persisted settings when a settings store is provided.
func NewEngine(ctx context.Context, cfg EngineConfig) (*Engine, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("history config is required")
	}
	if cfg.Timeline == nil {
		return nil, fmt.Errorf("timeline provider is required")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	metrics := NewMetricsCollector()
	if !cfg.Config.EnableMetrics {
		metrics = NewDisabledMetricsCollector()
	}

	e := &Engine{
		cfg:      cfg.Config,
		timeline: cfg.Timeline,
		cache:    cfg.Cache,
		tracer:   cfg.Tracer,
		metrics:  metrics,
		logger:   cfg.Logger,
		clock:    clock,
	}
	if e.tracer == nil || !cfg.Config.EnableTracing {
		e.tracer = nopTracer{}
	}
	if !cfg.Config.CacheEnabled {
		e.cache = nil
	}
	if versioned, ok := cfg.Timeline.(VersionedTimeline); ok {
		e.versions = versioned
	} else {
		// Without timeline versions a cached result could outlive a timeline
		// change and leak a segment flagged private after it was cached.
		e.cache = nil
	}

	e.policies = NewPolicyStore(cfg.Settings, clock)
	if err := e.policies.Hydrate(ctx); err != nil {
		return nil, err
	}

	return e, nil
}

// SetHistoryAccess replaces the conversation's default policy.
func (e *Engine) SetHistoryAccess(ctx context.Context, conversationID string, level AccessLevel, actingUserID string, respectPrivate bool) error {
	err := e.policies.SetHistoryAccess(ctx, conversationID, level, actingUserID, respectPrivate)
	e.metrics.RecordMutation(err)
	if err != nil {
		return err
	}
	e.logger.Info().
		Str("conversation_id", conversationID).
		Str("acting_user", actingUserID).
		Str("access_kind", string(level.Kind())).
		Bool("respect_private", respectPrivate).
		Msg("default history access updated")
	return nil
}

// SetParticipantHistoryAccess inserts or replaces one participant override.
func (e *Engine) SetParticipantHistoryAccess(ctx context.Context, conversationID, participantID string, level AccessLevel, actingUserID string) error {
	err := e.policies.SetParticipantHistoryAccess(ctx, conversationID, participantID, level, actingUserID)
	e.metrics.RecordMutation(err)
	if err != nil {
		return err
	}
	e.logger.Info().
		Str("conversation_id", conversationID).
		Str("participant_id", participantID).
		Str("acting_user", actingUserID).
		Str("access_kind", string(level.Kind())).
		Msg("participant history access updated")
	return nil
}

// RemoveParticipantHistoryAccess drops a participant override so the
// conversation default applies again.
func (e *Engine) RemoveParticipantHistoryAccess(ctx context.Context, conversationID, participantID, actingUserID string) error {
	err := e.policies.RemoveParticipantHistoryAccess(ctx, conversationID, participantID, actingUserID)
	e.metrics.RecordMutation(err)
	return err
}

// Resolve returns the effective access level for a participant.
func (e *Engine) Resolve(conversationID, participantID string) AccessLevel {
	return e.policies.Resolve(conversationID, participantID)
}

// FilteredHistoryFor resolves the participant's effective policy and runs
// the segmentation filter against a timeline snapshot.
func (e *Engine) FilteredHistoryFor(ctx context.Context, conversationID, participantID string) (FilteredHistory, error) {
	settings := e.policies.Snapshot(conversationID)
	level := settings.DefaultAccess
	if override, ok := settings.ParticipantAccess[participantID]; ok {
		level = override
	}

	var cacheKey string
	if e.cache != nil {
		cacheKey = fmt.Sprintf("%s/%s/%d/%d", conversationID, participantID,
			e.policies.Version(conversationID), e.versions.TimelineVersion(conversationID))
		if raw, ok := e.cache.Get(ctx, cacheKey); ok {
			var cached FilteredHistory
			if err := json.Unmarshal(raw, &cached); err == nil {
				e.metrics.RecordCacheHit()
				return cached, nil
			}
		}
		e.metrics.RecordCacheMiss()
	}

	segments, err := e.timeline.Segments(ctx, conversationID)
	if err != nil {
		return FilteredHistory{}, fmt.Errorf("failed to load timeline for %s: %w", conversationID, err)
	}

	start := e.clock()
	result := FilterTimeline(segments, level, settings.RespectPrivate, e.clock())
	e.metrics.RecordFilter(e.clock().Sub(start))

	if e.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = e.cache.Set(ctx, cacheKey, raw, e.cfg.CacheTTLSeconds)
		}
	}

	return result, nil
}

// HistorySummary scans the unfiltered timeline for overview displays.
func (e *Engine) HistorySummary(ctx context.Context, conversationID string) (Summary, error) {
	segments, err := e.timeline.Segments(ctx, conversationID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load timeline for %s: %w", conversationID, err)
	}
	e.metrics.RecordSummary()
	return BuildSummary(segments), nil
}

// QuickPickLevels returns the configured quick-pick access levels. Falls
// back to the canned defaults when the config carries no override.
func (e *Engine) QuickPickLevels() []AccessLevel {
	if e.cfg.QuickLimitedMessages <= 0 || e.cfg.QuickLimitedWindow <= 0 {
		return DefaultHistoryAccessLevels()
	}
	count := e.cfg.QuickLimitedMessages
	return []AccessLevel{
		AccessNone{},
		AccessLimited{
			MessageCount: &count,
			TimeRange: &TimeWindow{
				Value: e.cfg.QuickLimitedWindow,
				Unit:  TimeUnit(e.cfg.QuickLimitedUnit),
			},
		},
		AccessFull{},
	}
}

// Metrics returns a snapshot of collected engine metrics.
func (e *Engine) Metrics() MetricsSummary {
	return e.metrics.GetSummary()
}

// nopTracer drops all spans and events.
type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

func (nopTracer) Event(ctx context.Context, name string, attrs map[string]any) {}
