package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// DefaultIdleTimeout is the grace period before leaving a channel without listeners.
const DefaultIdleTimeout = 15 * time.Second

// IdleMonitor disconnects sessions whose voice channel has no human listeners
// left once a grace period has passed.
type IdleMonitor struct {
	repo       domain.PlayerStateRepository
	voiceState ports.VoiceStateProvider
	voice      *VoiceChannelService
	reporter   ports.ErrorReporter
	timeout    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[snowflake.ID]struct{}
}

// NewIdleMonitor creates a new IdleMonitor.
func NewIdleMonitor(
	repo domain.PlayerStateRepository,
	voiceState ports.VoiceStateProvider,
	voice *VoiceChannelService,
	reporter ports.ErrorReporter,
	timeout time.Duration,
) *IdleMonitor {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &IdleMonitor{
		repo:       repo,
		voiceState: voiceState,
		voice:      voice,
		reporter:   reporter,
		timeout:    timeout,
		ctx:        ctx,
		cancel:     cancel,
		pending:    make(map[snowflake.ID]struct{}),
	}
}

// Check schedules a disconnect for the guild if its session's voice channel
// has no human listeners. At most one check per guild is pending at a time.
func (m *IdleMonitor) Check(guildID snowflake.ID) {
	state := m.repo.Get(guildID)
	if state == nil {
		return
	}

	if !m.isIdle(state) {
		return
	}

	m.mu.Lock()
	if _, ok := m.pending[guildID]; ok || m.ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	m.pending[guildID] = struct{}{}
	m.wg.Add(1)
	m.mu.Unlock()

	slog.Debug("voice channel idle, scheduling disconnect", "guild", guildID, "timeout", m.timeout)

	go m.wait(guildID, state)
}

func (m *IdleMonitor) wait(guildID snowflake.ID, state *domain.PlayerState) {
	defer m.wg.Done()
	defer m.reporter.Recover("idle monitor")
	defer func() {
		m.mu.Lock()
		delete(m.pending, guildID)
		m.mu.Unlock()
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case <-m.ctx.Done():
		return
	case <-timer.C:
	}

	// The session may have been replaced or a listener may have joined
	// during the wait.
	if m.repo.Get(guildID) != state || !m.isIdle(state) {
		slog.Debug("voice channel no longer idle", "guild", guildID)
		return
	}

	slog.Info("leaving idle voice channel", "guild", guildID)

	if err := m.voice.Teardown(m.ctx, guildID, state); err != nil {
		m.reporter.Report("idle monitor", err, nil)
	}
}

func (m *IdleMonitor) isIdle(state *domain.PlayerState) bool {
	state.Lock()
	guildID, channelID := state.GuildID(), state.VoiceChannelID()
	state.Unlock()

	hasListeners, err := m.voiceState.HasHumanListeners(guildID, channelID)
	if err != nil {
		slog.Warn("failed to check voice channel listeners", "guild", guildID, "error", err)
		return false
	}
	return !hasListeners
}

// Close cancels pending checks and waits for them to return.
func (m *IdleMonitor) Close() {
	m.cancel()
	m.wg.Wait()
}
