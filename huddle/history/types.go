// Package history implements the conversation history access engine: the
// segment data model, per-participant access policies, the deterministic
// timeline filter, and the invitation preview flow built on top of it.
package history

import (
	"encoding/json"
	"fmt"
	"time"
)

// Segment represents a contiguous, non-overlapping slice of a
// conversation's message timeline with aggregate metadata. Segments for a
// conversation are ordered by StartTime ascending and never intersect;
// the upstream segmentation process owns that invariant.
type Segment struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MessageCount   int       `json:"message_count"`
	IsPrivate      bool      `json:"is_private"`
	Participants   []string  `json:"participants"`
	AIAgents       []string  `json:"ai_agents"`
	Summary        string    `json:"summary,omitempty"`
}

// AccessKind discriminates the closed set of access level variants.
type AccessKind string

const (
	AccessKindNone    AccessKind = "none"
	AccessKindLimited AccessKind = "limited"
	AccessKindFull    AccessKind = "full"
	AccessKindCustom  AccessKind = "custom"
)

// AccessLevel describes how much of a conversation's history a viewer may
// see. The set of implementations is closed: AccessNone, AccessLimited,
// AccessFull, AccessCustom. Switch on Kind() or the concrete type.
type AccessLevel interface {
	Kind() AccessKind
	// Validate reports structural problems that must reject the level
	// before it is stored.
	Validate() error

	sealedAccessLevel()
}

// AccessNone hides every segment.
type AccessNone struct{}

func (AccessNone) Kind() AccessKind { return AccessKindNone }
func (AccessNone) Validate() error  { return nil }
func (AccessNone) sealedAccessLevel() {}

// AccessFull shows every eligible segment.
type AccessFull struct{}

func (AccessFull) Kind() AccessKind { return AccessKindFull }
func (AccessFull) Validate() error  { return nil }
func (AccessFull) sealedAccessLevel() {}

// AccessLimited bounds visibility by an optional message ceiling and/or an
// optional window measured back from "now". Nil fields mean unbounded.
type AccessLimited struct {
	MessageCount *int        `json:"message_count,omitempty"`
	TimeRange    *TimeWindow `json:"time_range,omitempty"`
}

func (AccessLimited) Kind() AccessKind { return AccessKindLimited }
func (AccessLimited) sealedAccessLevel() {}

func (l AccessLimited) Validate() error {
	if l.MessageCount != nil && *l.MessageCount <= 0 {
		return &InvalidCountError{Count: *l.MessageCount}
	}
	if l.TimeRange != nil {
		if err := l.TimeRange.validate(); err != nil {
			return err
		}
	}
	return nil
}

// AccessCustom bounds visibility to an explicit window. A segment must be
// wholly contained in [Start, End] to be visible.
type AccessCustom struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (AccessCustom) Kind() AccessKind { return AccessKindCustom }
func (AccessCustom) sealedAccessLevel() {}

func (c AccessCustom) Validate() error {
	if c.Start.After(c.End) {
		return &InvalidRangeError{Start: c.Start, End: c.End}
	}
	return nil
}

// TimeUnit is the unit of a relative time window.
type TimeUnit string

const (
	UnitMinutes TimeUnit = "minutes"
	UnitHours   TimeUnit = "hours"
	UnitDays    TimeUnit = "days"
)

// TimeWindow is a relative span measured back from the evaluation time.
type TimeWindow struct {
	Value int      `json:"value"`
	Unit  TimeUnit `json:"unit"`
}

// Duration converts the window to a time.Duration.
func (w TimeWindow) Duration() time.Duration {
	switch w.Unit {
	case UnitMinutes:
		return time.Duration(w.Value) * time.Minute
	case UnitHours:
		return time.Duration(w.Value) * time.Hour
	case UnitDays:
		return time.Duration(w.Value) * 24 * time.Hour
	default:
		return 0
	}
}

func (w TimeWindow) validate() error {
	if w.Value <= 0 {
		return &InvalidWindowError{Value: w.Value, Unit: w.Unit}
	}
	switch w.Unit {
	case UnitMinutes, UnitHours, UnitDays:
		return nil
	default:
		return fmt.Errorf("unknown time unit: %q", w.Unit)
	}
}

// Settings holds the history visibility policy for one conversation.
// Created lazily on first mutation; a conversation with no settings behaves
// as full access with private segments respected.
type Settings struct {
	ConversationID    string                 `json:"conversation_id"`
	DefaultAccess     AccessLevel            `json:"-"`
	ParticipantAccess map[string]AccessLevel `json:"-"`
	RespectPrivate    bool                   `json:"respect_private_segments"`
	AllowDownload     bool                   `json:"allow_history_download"`
	CreatedBy         string                 `json:"created_by"`
	CreatedAt         time.Time              `json:"created_at"`
	LastModified      time.Time              `json:"last_modified"`
}

// Clone returns a deep copy safe to hand to readers while writers proceed.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	out := *s
	out.ParticipantAccess = make(map[string]AccessLevel, len(s.ParticipantAccess))
	for id, level := range s.ParticipantAccess {
		out.ParticipantAccess[id] = level
	}
	return &out
}

// DefaultSettings is the behavior of a conversation nobody has configured.
func DefaultSettings(conversationID string) *Settings {
	return &Settings{
		ConversationID:    conversationID,
		DefaultAccess:     AccessFull{},
		ParticipantAccess: make(map[string]AccessLevel),
		RespectPrivate:    true,
		CreatedBy:         "system",
	}
}

// TimeSpan is the interval covered by a filtered result.
type TimeSpan struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilteredHistory is the participant-visible view of a timeline plus
// aggregate statistics over it.
type FilteredHistory struct {
	Segments []Segment `json:"segments"`
	// TotalMessages sums message counts over the unfiltered timeline.
	TotalMessages int `json:"total_messages"`
	// AccessibleMessages sums message counts over the visible segments.
	AccessibleMessages int `json:"accessible_messages"`
	// HiddenSegments counts segments removed by the privacy pass alone.
	HiddenSegments int `json:"hidden_segments"`
	// TimeRange spans the visible segments, or is zero-width at the
	// evaluation time when nothing is visible.
	TimeRange TimeSpan `json:"time_range"`
}

// accessLevelDoc is the stable JSON envelope for AccessLevel values.
type accessLevelDoc struct {
	Kind         AccessKind  `json:"kind"`
	MessageCount *int        `json:"message_count,omitempty"`
	TimeRange    *TimeWindow `json:"time_range,omitempty"`
	Start        *time.Time  `json:"start,omitempty"`
	End          *time.Time  `json:"end,omitempty"`
}

// MarshalAccessLevel encodes an access level into its JSON envelope.
func MarshalAccessLevel(level AccessLevel) ([]byte, error) {
	doc := accessLevelDoc{Kind: level.Kind()}
	switch l := level.(type) {
	case AccessNone, AccessFull:
	case AccessLimited:
		doc.MessageCount = l.MessageCount
		doc.TimeRange = l.TimeRange
	case AccessCustom:
		start, end := l.Start, l.End
		doc.Start, doc.End = &start, &end
	default:
		return nil, fmt.Errorf("unknown access level kind: %q", level.Kind())
	}
	return json.Marshal(doc)
}

// UnmarshalAccessLevel decodes an access level from its JSON envelope.
func UnmarshalAccessLevel(data []byte) (AccessLevel, error) {
	var doc accessLevelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode access level: %w", err)
	}
	switch doc.Kind {
	case AccessKindNone:
		return AccessNone{}, nil
	case AccessKindFull:
		return AccessFull{}, nil
	case AccessKindLimited:
		return AccessLimited{MessageCount: doc.MessageCount, TimeRange: doc.TimeRange}, nil
	case AccessKindCustom:
		if doc.Start == nil || doc.End == nil {
			return nil, fmt.Errorf("custom access level missing start or end")
		}
		return AccessCustom{Start: *doc.Start, End: *doc.End}, nil
	default:
		return nil, fmt.Errorf("unknown access level kind: %q", doc.Kind)
	}
}
