package voice

import (
	"context"
	"log/slog"
)

// CloneManager enforces the clone-slot protocol for one provider:
// at most one clone exists per provider at any time. Before creating a
// clone it sweeps pre-existing ones; after a clone has been used it
// reclaims the slot with a direct delete plus an orphan sweep.
//
// All cleanup is best-effort (failures are logged, never propagated)
// because slot hygiene must not block the user-visible operation.
type CloneManager struct {
	provider Provider
	logger   *slog.Logger
}

// NewCloneManager creates a lifecycle manager for the given provider.
func NewCloneManager(provider Provider, logger *slog.Logger) *CloneManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloneManager{
		provider: provider,
		logger:   logger.With("component", "voice.lifecycle", "provider", provider.Name()),
	}
}

// Provider returns the managed provider.
func (m *CloneManager) Provider() Provider {
	return m.provider
}

// CreateClone sweeps all existing clones, then creates a new one from
// the audio sample. Sweep failures never block creation.
func (m *CloneManager) CreateClone(ctx context.Context, name string, sample []byte) (string, error) {
	m.Sweep(ctx, "")
	return m.provider.CloneVoice(ctx, name, sample)
}

// Reclaim frees the slot held by voiceID after its last use. Two
// redundant strategies run in sequence and both complete before this
// returns, because the hosting environment may freeze execution the
// moment a response is sent:
//
//  1. direct delete of voiceID, which works even for a clone the list
//     API has not indexed yet;
//  2. a sweep that deletes every listed clone, catching orphans from
//     abandoned sessions.
func (m *CloneManager) Reclaim(ctx context.Context, voiceID string) {
	if voiceID != "" {
		if err := m.provider.DeleteVoice(ctx, voiceID); err != nil {
			m.logger.Warn("direct delete failed", "voice_id", voiceID, "error", err)
		} else {
			m.logger.Debug("direct delete succeeded", "voice_id", voiceID)
		}
	}
	m.Sweep(ctx, "")
}

// Sweep lists the provider's voices and deletes every clone except
// excludeID. Returns the number of clones deleted. Errors are logged
// and swallowed.
func (m *CloneManager) Sweep(ctx context.Context, excludeID string) int {
	voices, err := m.provider.ListVoices(ctx)
	if err != nil {
		m.logger.Warn("sweep: list voices failed", "error", err)
		return 0
	}

	deleted := 0
	for _, v := range voices {
		if !v.IsClone() || v.ID == excludeID {
			continue
		}
		if err := m.provider.DeleteVoice(ctx, v.ID); err != nil {
			m.logger.Warn("sweep: delete failed", "voice_id", v.ID, "error", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		m.logger.Info("sweep reclaimed orphaned clones", "deleted", deleted)
	}
	return deleted
}
