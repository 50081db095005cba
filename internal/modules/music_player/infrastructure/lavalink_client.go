package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// nodeWatchInterval is how often the node status is polled once connected.
const nodeWatchInterval = 2 * time.Second

// ErrNoNode is returned when no Lavalink node is connected.
var ErrNoNode = errors.New("no available Lavalink node")

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName string
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink to implement the audio player, voice
// connection and track resolver ports.
type LavalinkAdapter struct {
	link      disgolink.Client
	session   *discordgo.Session
	botID     snowflake.ID
	config    LavalinkConfig
	publisher ports.EventPublisher

	voice   *voiceRelay
	limiter *reconnectLimiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLavalinkAdapter creates a new LavalinkAdapter. It does not connect to
// the node; call Start for that.
func NewLavalinkAdapter(
	session *discordgo.Session,
	config LavalinkConfig,
	publisher ports.EventPublisher,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}
	if config.NodeName == "" {
		config.NodeName = "main"
	}

	ctx, cancel := context.WithCancel(context.Background())

	adapter := &LavalinkAdapter{
		session:   session,
		botID:     botID,
		config:    config,
		publisher: publisher,
		limiter: newReconnectLimiter(
			defaultConnectRate,
			defaultMinConnectRate,
			defaultConnectStepDown,
		),
		ctx:    ctx,
		cancel: cancel,
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
		disgolink.WithListenerFunc(adapter.onWebSocketClosed),
	)
	adapter.voice = newVoiceRelay(adapter.link)

	return adapter, nil
}

// Start connects to the node in the background, retrying with backoff, and
// then watches the link for drops until Close is called.
func (c *LavalinkAdapter) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if err := connectWithRetry(c.ctx, c.limiter, c.addNode); err != nil {
			slog.Debug("stopped connecting to Lavalink", "error", err)
			return
		}
		c.watchNode()
	}()
}

// Close stops the background loops and closes all node connections.
func (c *LavalinkAdapter) Close() {
	c.cancel()
	c.wg.Wait()
	c.link.Close()
}

func (c *LavalinkAdapter) addNode(ctx context.Context) error {
	// A failed attempt may leave a half-open node registered under the same name.
	if c.link.Node(c.config.NodeName) != nil {
		c.link.RemoveNode(c.config.NodeName)
	}

	node, err := c.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     c.config.NodeName,
		Address:  c.config.Address,
		Password: c.config.Password,
		Secure:   c.config.Secure,
	})
	if err != nil {
		return fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", c.config.Address)
	return nil
}

// watchNode reports link drops and recoveries. disgolink reconnects the
// node websocket on its own.
func (c *LavalinkAdapter) watchNode() {
	watcher := &nodeWatcher{
		status: c.nodeStatus,
		onLost: func() {
			slog.Warn("lost connection to Lavalink node", "node", c.config.NodeName)
			c.publisher.PublishNodeLinkLost(domain.NodeLinkLostEvent{NodeName: c.config.NodeName})
		},
		onRecovered: func() {
			slog.Info("reconnected to Lavalink node", "node", c.config.NodeName)
		},
		connected: true,
	}

	ticker := time.NewTicker(nodeWatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			watcher.observe()
		}
	}
}

func (c *LavalinkAdapter) nodeStatus() disgolink.Status {
	node := c.link.Node(c.config.NodeName)
	if node == nil {
		return disgolink.StatusDisconnected
	}
	return node.Status()
}

// IsAvailable reports whether the node is connected.
func (c *LavalinkAdapter) IsAvailable() bool {
	return c.nodeStatus() == disgolink.StatusConnected
}

// JoinChannel connects to a voice channel.
// It waits until the voice handshake has been forwarded to the node.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	ready, release := c.voice.expect(guildID)
	defer release()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(voiceConnectionTimeout)
	defer timer.Stop()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-timer.C:
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the node player and leaves the voice channel.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts streaming a track, replacing whatever the player streams.
func (c *LavalinkAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	track *domain.Track,
) error {
	player := c.link.Player(guildID)

	// Use WithEncodedTrack to avoid userData:null issue
	if err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Stop stops the current playback. The node answers with a stopped end event.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// Seek moves the playback position of the current track.
func (c *LavalinkAdapter) Seek(
	ctx context.Context,
	guildID snowflake.ID,
	position time.Duration,
) error {
	player := c.link.Player(guildID)

	err := player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds())))
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

// Position returns the last known playback position, or 0 without a player.
func (c *LavalinkAdapter) Position(guildID snowflake.ID) time.Duration {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return 0
	}
	return time.Duration(player.Position()) * time.Millisecond
}

// LoadTracks resolves a URL or prefixed search query on the node.
func (c *LavalinkAdapter) LoadTracks(
	ctx context.Context,
	query string,
) (*ports.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, ErrNoNode
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result)
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	c.voice.serverUpdate(c.ctx, guildID, event.Token, event.Endpoint)
}

// OnVoiceStateUpdate handles Discord voice state updates of the bot itself.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	c.voice.stateUpdate(c.ctx, guildID, channelID, event.SessionID)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)

	c.publisher.PublishTrackStarted(domain.TrackStartedEvent{
		GuildID: player.GuildID(),
		Encoded: event.Track.Encoded,
	})
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	c.publisher.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID: player.GuildID(),
		Encoded: event.Track.Encoded,
		Reason:  convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func (c *LavalinkAdapter) onWebSocketClosed(
	player disgolink.Player,
	event lavalink.WebSocketClosedEvent,
) {
	slog.Warn("voice websocket closed",
		"guild", player.GuildID(),
		"code", event.Code,
		"reason", event.Reason,
		"by_remote", event.ByRemote,
	)
}

// convertLoadResult converts a Lavalink load result. Load exceptions become errors.
func convertLoadResult(result *lavalink.LoadResult) (*ports.LoadResult, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*ports.TrackInfo{convertTrack(data)},
		}, nil

	case lavalink.Playlist:
		return &ports.LoadResult{
			Type:         ports.LoadTypePlaylist,
			Tracks:       convertTracks(data.Tracks),
			PlaylistName: data.Info.Name,
		}, nil

	case lavalink.Search:
		return &ports.LoadResult{
			Type:   ports.LoadTypeSearch,
			Tracks: convertTracks(data),
		}, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("lavalink load exception (%s): %s", data.Severity, data.Message)

	default:
		return &ports.LoadResult{
			Type: ports.LoadTypeEmpty,
		}, nil
	}
}

func convertTracks(tracks []lavalink.Track) []*ports.TrackInfo {
	infos := make([]*ports.TrackInfo, len(tracks))
	for i, track := range tracks {
		infos[i] = convertTrack(track)
	}
	return infos
}

// convertTrack converts a Lavalink track to TrackInfo.
func convertTrack(track lavalink.Track) *ports.TrackInfo {
	info := track.Info

	return &ports.TrackInfo{
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Artist:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        derefString(info.URI),
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver   = (*LavalinkAdapter)(nil)
)
