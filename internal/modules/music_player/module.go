package music_player

import (
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/bot"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/lavabot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/lavabot/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	eventBus        *infrastructure.ChannelEventBus
	idleMonitor     *usecases.IdleMonitor
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return m.commandHandlers.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		m.eventHandlers.HandleVoiceServerUpdate,
		m.eventHandlers.HandleVoiceStateUpdate,
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the module together and starts connecting to the audio node.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player requires a Discord session")
	}

	reporter := deps.Reporter

	// The adapter publishes node events, so the bus comes first
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		deps.Session,
		infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress(),
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
		m.eventBus,
	)
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Infrastructure
	repo := infrastructure.NewMemoryRepository()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session)

	// Use cases
	trackLoader := usecases.NewTrackLoaderService(lavalinkAdapter)
	voiceChannel := usecases.NewVoiceChannelService(repo, lavalinkAdapter, voiceState, notifier)
	playback := usecases.NewPlaybackService(
		repo,
		lavalinkAdapter,
		voiceState,
		notifier,
		voiceChannel,
		trackLoader,
	)
	queue := usecases.NewQueueService(repo, lavalinkAdapter, voiceState)
	m.idleMonitor = usecases.NewIdleMonitor(
		repo,
		voiceState,
		voiceChannel,
		reporter,
		m.config.IdleTimeout,
	)

	// Application event handlers
	application.NewPlaybackEventHandler(repo, lavalinkAdapter, notifier, m.eventBus, reporter).Start()
	application.NewNotificationEventHandler(repo, m.eventBus, notifier, userInfo, reporter).Start()

	// Presentation
	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}
	m.commandHandlers = discord.NewCommandHandlers(voiceChannel, playback, queue)
	m.eventHandlers = discord.NewEventHandlers(
		botID,
		lavalinkAdapter,
		voiceChannel,
		m.idleMonitor,
		reporter,
	)

	lavalinkAdapter.Start()

	slog.Info("music_player module initialized",
		"lavalink_address", m.config.LavalinkAddress(),
		"idle_timeout", m.config.IdleTimeout,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	if m.idleMonitor != nil {
		m.idleMonitor.Close()
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}
