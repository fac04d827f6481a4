package history

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PolicyStore holds per-conversation history settings and resolves the
// effective access level for a (conversation, participant) pair.
//
// Writers to the same conversation are serialized behind the store mutex;
// readers get copy-on-write snapshots and never observe a half-applied
// mutation. Conversations are fully independent.
type PolicyStore struct {
	mu       sync.RWMutex
	settings map[string]*Settings
	versions map[string]uint64

	persist SettingsStore // optional write-through persistence
	clock   func() time.Time
}

// NewPolicyStore creates a policy store. persist may be nil for a purely
// in-memory store; clock may be nil to use time.Now.
func NewPolicyStore(persist SettingsStore, clock func() time.Time) *PolicyStore {
	if clock == nil {
		clock = time.Now
	}
	return &PolicyStore{
		settings: make(map[string]*Settings),
		versions: make(map[string]uint64),
		persist:  persist,
		clock:    clock,
	}
}

// Hydrate replaces in-memory state with the persisted settings.
func (ps *PolicyStore) Hydrate(ctx context.Context) error {
	if ps.persist == nil {
		return nil
	}
	loaded, err := ps.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history settings: %w", err)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.settings = make(map[string]*Settings, len(loaded))
	for id, s := range loaded {
		ps.settings[id] = s.Clone()
	}
	return nil
}

// SetHistoryAccess replaces the conversation's default access level.
// Existing participant overrides, the download flag, and the audit creator
// fields are preserved; LastModified is updated. Validation failures leave
// the settings untouched.
func (ps *PolicyStore) SetHistoryAccess(ctx context.Context, conversationID string, level AccessLevel, actingUserID string, respectPrivate bool) error {
	if err := level.Validate(); err != nil {
		return err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	updated := ps.settingsLocked(conversationID, actingUserID)
	updated.DefaultAccess = level
	updated.RespectPrivate = respectPrivate
	updated.LastModified = ps.clock()

	return ps.commitLocked(ctx, updated)
}

// SetParticipantHistoryAccess inserts or replaces the override for one
// participant, leaving the default and other overrides untouched.
func (ps *PolicyStore) SetParticipantHistoryAccess(ctx context.Context, conversationID, participantID string, level AccessLevel, actingUserID string) error {
	if err := level.Validate(); err != nil {
		return err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	updated := ps.settingsLocked(conversationID, actingUserID)
	updated.ParticipantAccess[participantID] = level
	updated.LastModified = ps.clock()

	return ps.commitLocked(ctx, updated)
}

// RemoveParticipantHistoryAccess deletes a participant's override so the
// conversation default applies again. Removing an absent override is a
// no-op that still touches LastModified.
func (ps *PolicyStore) RemoveParticipantHistoryAccess(ctx context.Context, conversationID, participantID string, actingUserID string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	updated := ps.settingsLocked(conversationID, actingUserID)
	delete(updated.ParticipantAccess, participantID)
	updated.LastModified = ps.clock()

	return ps.commitLocked(ctx, updated)
}

// Resolve returns the effective access level for a participant: their
// override if present, else the conversation default, else full access.
func (ps *PolicyStore) Resolve(conversationID, participantID string) AccessLevel {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	s, ok := ps.settings[conversationID]
	if !ok {
		return AccessFull{}
	}
	if override, ok := s.ParticipantAccess[participantID]; ok {
		return override
	}
	return s.DefaultAccess
}

// Snapshot returns a copy of the conversation's settings, synthesizing the
// system default for conversations nobody has configured.
func (ps *PolicyStore) Snapshot(conversationID string) *Settings {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if s, ok := ps.settings[conversationID]; ok {
		return s.Clone()
	}
	return DefaultSettings(conversationID)
}

// Version returns a counter that advances on every mutation of the
// conversation's settings. Used to key derived caches.
func (ps *PolicyStore) Version(conversationID string) uint64 {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.versions[conversationID]
}

// settingsLocked returns a mutable clone of the conversation's settings,
// initializing audit fields on first mutation. Callers hold the write lock.
func (ps *PolicyStore) settingsLocked(conversationID, actingUserID string) *Settings {
	if existing, ok := ps.settings[conversationID]; ok {
		return existing.Clone()
	}
	s := DefaultSettings(conversationID)
	s.CreatedBy = actingUserID
	s.CreatedAt = ps.clock()
	return s
}

// commitLocked persists the updated settings, then publishes them to
// readers. A persistence failure leaves the previous state visible.
func (ps *PolicyStore) commitLocked(ctx context.Context, updated *Settings) error {
	if ps.persist != nil {
		if err := ps.persist.Save(ctx, updated); err != nil {
			return fmt.Errorf("failed to persist history settings: %w", err)
		}
	}
	ps.settings[updated.ConversationID] = updated
	ps.versions[updated.ConversationID]++
	return nil
}
