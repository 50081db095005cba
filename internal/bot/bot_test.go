package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type recordingReporter struct {
	sources []string
	errs    []error
}

func (r *recordingReporter) Report(source string, err error, _ []byte) {
	r.sources = append(r.sources, source)
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) Recover(source string) {
	if v := recover(); v != nil {
		r.Report(source, errors.New("panic"), nil)
	}
}

func commandInteraction(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{Name: name},
		},
	}
}

func TestNewBot(t *testing.T) {
	cfg := &Config{
		DiscordToken: "test-token",
	}

	b := NewBot(cfg)

	if b == nil {
		t.Fatal("expected bot to be created, got nil")
	}
	if b.config != cfg {
		t.Error("expected config to be stored")
	}
	if b.reporter == nil {
		t.Error("expected a default reporter")
	}
}

// trackingStubModule is a stub that tracks if Init and LoadConfig were called
type trackingStubModule struct {
	stubModule
	initCalled   *bool
	configCalled *bool
	configErr    error
}

func (m *trackingStubModule) Init(deps ModuleDependencies) error {
	*m.initCalled = true
	return m.stubModule.Init(deps)
}

func (m *trackingStubModule) LoadConfig() error {
	*m.configCalled = true
	return m.configErr
}

func TestBot_InitModules(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	initCalled := false
	configCalled := false
	b.modules = []Module{&trackingStubModule{
		stubModule:   stubModule{name: "tracking"},
		initCalled:   &initCalled,
		configCalled: &configCalled,
	}}

	if err := b.initModules(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !initCalled {
		t.Error("expected Init to be called")
	}
}

func TestBot_InitModules_ReturnsInitError(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	expectedErr := errors.New("init failed")
	b.modules = []Module{&stubModule{name: "failing", initErr: expectedErr}}

	err := b.initModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_LoadModuleConfigs(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	initCalled := false
	configCalled := false
	expectedErr := errors.New("missing LAVALINK_HOST")
	b.modules = []Module{
		&stubModule{name: "plain"},
		&trackingStubModule{
			stubModule:   stubModule{name: "configurable"},
			initCalled:   &initCalled,
			configCalled: &configCalled,
			configErr:    expectedErr,
		},
	}

	err := b.loadModuleConfigs()
	if !configCalled {
		t.Error("expected LoadConfig to be called")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_BuildHandlerMap_MultipleModules(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	b.modules = []Module{
		&stubModule{name: "mod1", handlers: map[string]InteractionHandler{"play": handler}},
		&stubModule{name: "mod2", handlers: map[string]InteractionHandler{"skip": handler}},
	}

	b.buildHandlerMap()

	if len(b.handlers) != 2 {
		t.Errorf("expected 2 handlers, got %d", len(b.handlers))
	}
	if _, ok := b.handlers["play"]; !ok {
		t.Error("expected play handler to be registered")
	}
}

func TestBot_CollectCommands(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	b.modules = []Module{&stubModule{
		name: "test",
		commands: []*discordgo.ApplicationCommand{
			{Name: "play", Description: "Play a track from YouTube."},
		},
	}}

	commands := b.collectCommands()

	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].Name != "play" {
		t.Errorf("expected command name %q, got %q", "play", commands[0].Name)
	}
}

func TestBot_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		handler     InteractionHandler
		wantReports int
		wantTitle   string
	}{
		{
			name:    "handler succeeds",
			command: "play",
			handler: func(_ *discordgo.Session, _ *discordgo.InteractionCreate, r Responder) error {
				return Reply(r, "ok")
			},
		},
		{
			name:      "unknown command",
			command:   "missing",
			wantTitle: "Unknown Command",
		},
		{
			name:    "handler error is reported",
			command: "play",
			handler: func(_ *discordgo.Session, _ *discordgo.InteractionCreate, _ Responder) error {
				return errors.New("lavalink exploded")
			},
			wantReports: 1,
			wantTitle:   "Error",
		},
		{
			name:    "handler panic is recovered and reported",
			command: "play",
			handler: func(_ *discordgo.Session, _ *discordgo.InteractionCreate, _ Responder) error {
				panic("nil map")
			},
			wantReports: 1,
			wantTitle:   "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &recordingReporter{}
			b := NewBot(&Config{DiscordToken: "test-token"})
			b.reporter = reporter
			if tt.handler != nil {
				b.handlers["play"] = tt.handler
			}

			r := &MockResponder{}
			b.dispatch(nil, commandInteraction(tt.command), r)

			if len(reporter.errs) != tt.wantReports {
				t.Errorf("expected %d reports, got %d", tt.wantReports, len(reporter.errs))
			}
			if tt.wantTitle == "" {
				return
			}
			if r.LastResponse == nil || len(r.LastResponse.Data.Embeds) == 0 {
				t.Fatal("expected an embed response")
			}
			if got := r.LastResponse.Data.Embeds[0].Title; got != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, got)
			}
		})
	}
}

func TestBot_Dispatch_ErrorAfterDeferUsesFollowup(t *testing.T) {
	reporter := &recordingReporter{}
	b := NewBot(&Config{DiscordToken: "test-token"})
	b.reporter = reporter
	b.handlers["skip"] = func(_ *discordgo.Session, _ *discordgo.InteractionCreate, r Responder) error {
		if err := r.Defer(); err != nil {
			return err
		}
		return errors.New("stop failed")
	}

	r := &MockResponder{}
	b.dispatch(nil, commandInteraction("skip"), r)

	followup := r.LastFollowup()
	if followup == nil {
		t.Fatal("expected error follow-up")
	}
	if followup.Embeds[0].Title != "Error" {
		t.Errorf("expected error embed, got %q", followup.Embeds[0].Title)
	}
	if reporter.sources[0] != "skip" {
		t.Errorf("expected report source skip, got %q", reporter.sources[0])
	}
}
