package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"
)

// AccessOption is one entry of the fixed catalogue used to populate the
// access level selector in the invitation UI.
type AccessOption struct {
	Kind        AccessKind `json:"kind"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
}

// HistoryAccessOptions returns the catalogue of the four access level kinds
// in a fixed order. Pure; no side effects.
func HistoryAccessOptions() []AccessOption {
	return []AccessOption{
		{
			Kind:        AccessKindNone,
			Label:       "No history",
			Description: "The invitee starts with a clean slate",
			Icon:        "eye-off",
		},
		{
			Kind:        AccessKindLimited,
			Label:       "Limited history",
			Description: "Recent messages only, bounded by count or time",
			Icon:        "clock",
		},
		{
			Kind:        AccessKindFull,
			Label:       "Full history",
			Description: "Everything except private segments",
			Icon:        "book-open",
		},
		{
			Kind:        AccessKindCustom,
			Label:       "Custom range",
			Description: "Only segments inside an explicit date window",
			Icon:        "calendar",
		},
	}
}

// DefaultHistoryAccessLevels returns the canned quick-pick levels: nothing,
// the last 50 messages within 2 hours, and everything.
func DefaultHistoryAccessLevels() []AccessLevel {
	count := 50
	return []AccessLevel{
		AccessNone{},
		AccessLimited{
			MessageCount: &count,
			TimeRange:    &TimeWindow{Value: 2, Unit: UnitHours},
		},
		AccessFull{},
	}
}

// InvitationPreview pairs a freshly minted invitation identifier with the
// exact history view the invitee will receive.
type InvitationPreview struct {
	InvitationID   string          `json:"invitation_id"`
	ConversationID string          `json:"conversation_id"`
	InviteeID      string          `json:"invitee_id"`
	Access         AccessLevel     `json:"-"`
	Message        string          `json:"message,omitempty"`
	History        FilteredHistory `json:"history"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateInvitationWithHistory records the invitee's access override and
// returns an invitation preview computed against that override. The
// returned preview reflects exactly the policy just written; there is no
// window between the two within a call.
func (e *Engine) CreateInvitationWithHistory(ctx context.Context, conversationID, inviteeID string, access AccessLevel, inviterID, customMessage string) (*InvitationPreview, error) {
	start := e.clock()
	ctx, finish := e.tracer.StartSpan(ctx, "history.create_invitation", map[string]any{
		"conversation_id": conversationID,
		"invitee_id":      inviteeID,
		"access_kind":     access.Kind(),
	})

	preview, err := e.createInvitation(ctx, conversationID, inviteeID, access, inviterID, customMessage)
	e.metrics.RecordPreview(e.clock().Sub(start), err)
	finish(err)
	return preview, err
}

func (e *Engine) createInvitation(ctx context.Context, conversationID, inviteeID string, access AccessLevel, inviterID, customMessage string) (*InvitationPreview, error) {
	if err := e.policies.SetParticipantHistoryAccess(ctx, conversationID, inviteeID, access, inviterID); err != nil {
		return nil, fmt.Errorf("failed to set invitee access: %w", err)
	}

	view, err := e.FilteredHistoryFor(ctx, conversationID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute invitation preview: %w", err)
	}

	preview := &InvitationPreview{
		InvitationID:   uuid.New().String(),
		ConversationID: conversationID,
		InviteeID:      inviteeID,
		Access:         access,
		Message:        customMessage,
		History:        view,
		CreatedAt:      e.clock(),
	}

	e.logger.Info().
		Str("conversation_id", conversationID).
		Str("invitee_id", inviteeID).
		Str("invitation_id", preview.InvitationID).
		Str("access_kind", string(access.Kind())).
		Int("visible_segments", len(view.Segments)).
		Msg("invitation preview generated")

	return preview, nil
}

// PreviewForInvitees generates previews for a batch of prospective invitees
// sharing one access level, computing them concurrently. Either every
// invitee gets a preview or the whole batch fails.
func (e *Engine) PreviewForInvitees(ctx context.Context, conversationID string, inviteeIDs []string, access AccessLevel, inviterID string) ([]*InvitationPreview, error) {
	if err := access.Validate(); err != nil {
		return nil, err
	}

	return iter.MapErr(inviteeIDs, func(inviteeID *string) (*InvitationPreview, error) {
		return e.CreateInvitationWithHistory(ctx, conversationID, *inviteeID, access, inviterID, "")
	})
}
