package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/lavabot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/lavabot/internal/modules/music_player/domain"
)

var errMock = errors.New("mock error")

const (
	testGuildID    = snowflake.ID(1)
	testVoiceID    = snowflake.ID(2)
	testTextID     = snowflake.ID(3)
	testOtherVoice = snowflake.ID(4)
	testUserID     = snowflake.ID(100) // in testVoiceID
	testStrangerID = snowflake.ID(200) // in testOtherVoice
	testOutsiderID = snowflake.ID(300) // not in voice
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:          domain.TrackID(id),
		Encoded:     "encoded-" + id,
		Title:       "Track " + id,
		Artist:      "Artist",
		Duration:    3 * time.Minute,
		RequesterID: testUserID,
	}
}

func mockTrackInfo(id string) *ports.TrackInfo {
	return &ports.TrackInfo{
		Identifier: id,
		Encoded:    "encoded-" + id,
		Title:      "Track " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		URI:        "https://example.com/" + id,
		SourceName: "youtube",
	}
}

type mockRepository struct {
	mu      sync.Mutex
	states  map[snowflake.ID]*domain.PlayerState
	deleted []snowflake.ID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

func (m *mockRepository) Get(guildID snowflake.ID) *domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

func (m *mockRepository) Save(state *domain.PlayerState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.GuildID()] = state
}

func (m *mockRepository) Delete(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, guildID)
	delete(m.states, guildID)
}

func (m *mockRepository) All() []*domain.PlayerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.PlayerState, 0, len(m.states))
	for _, state := range m.states {
		result = append(result, state)
	}
	return result
}

func (m *mockRepository) deletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

// createConnectedState creates a session in testVoiceID with the given tracks
// enqueued, so the first one is current.
func (m *mockRepository) createConnectedState(tracks ...*domain.Track) *domain.PlayerState {
	state := domain.NewPlayerState(testGuildID, testVoiceID)
	state.BindNotificationChannel(testTextID)
	state.Enqueue(tracks...)
	m.Save(state)
	return state
}

type mockAudioPlayer struct {
	unavailable bool
	position    time.Duration
	played      []*domain.Track
	stops       int
	seeks       []time.Duration
	playErr     error
	stopErr     error
	seekErr     error
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stops++
	return nil
}

func (m *mockAudioPlayer) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	if m.seekErr != nil {
		return m.seekErr
	}
	m.seeks = append(m.seeks, position)
	return nil
}

func (m *mockAudioPlayer) Position(_ snowflake.ID) time.Duration {
	return m.position
}

func (m *mockAudioPlayer) IsAvailable() bool {
	return !m.unavailable
}

type mockVoiceConnection struct {
	mu       sync.Mutex
	joined   []snowflake.ID
	left     []snowflake.ID
	joinErr  error
	leaveErr error
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.left = append(m.left, guildID)
	return m.leaveErr
}

func (m *mockVoiceConnection) leftCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.left)
}

type mockTrackResolver struct {
	loadErr    error
	loadResult *ports.LoadResult
	queries    []string
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.queries = append(m.queries, query)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

type mockVoiceStateProvider struct {
	mu       sync.Mutex
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	humans   map[snowflake.ID]bool         // channelID -> has human listeners
	err      error
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{
		channels: map[snowflake.ID]snowflake.ID{
			testUserID:     testVoiceID,
			testStrangerID: testOtherVoice,
		},
		humans: map[snowflake.ID]bool{
			testVoiceID: true,
		},
	}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (*snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	channelID, ok := m.channels[userID]
	if !ok {
		return nil, nil
	}
	return &channelID, nil
}

func (m *mockVoiceStateProvider) HasHumanListeners(_, channelID snowflake.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	return m.humans[channelID], nil
}

func (m *mockVoiceStateProvider) setHumans(channelID snowflake.ID, present bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.humans[channelID] = present
}

type mockNotifier struct {
	mu        sync.Mutex
	sent      []*ports.NowPlayingInfo
	deleted   []snowflake.ID
	nextID    snowflake.ID
	sendErr   error
	deleteErr error
}

func (m *mockNotifier) SendNowPlaying(
	_ snowflake.ID,
	info *ports.NowPlayingInfo,
) (snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sent = append(m.sent, info)
	m.nextID++
	return m.nextID, nil
}

func (m *mockNotifier) DeleteMessage(_, messageID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return m.deleteErr
}

type mockReporter struct {
	mu      sync.Mutex
	reports []error
}

func (m *mockReporter) Report(_ string, err error, _ []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, err)
}

func (m *mockReporter) Recover(source string) {
	if r := recover(); r != nil {
		m.Report(source, errors.New("panic"), nil)
	}
}

// testServices wires every service against fresh mocks.
type testServices struct {
	repo       *mockRepository
	player     *mockAudioPlayer
	voiceConn  *mockVoiceConnection
	voiceState *mockVoiceStateProvider
	resolver   *mockTrackResolver
	notifier   *mockNotifier
	reporter   *mockReporter

	voice    *VoiceChannelService
	loader   *TrackLoaderService
	playback *PlaybackService
	queue    *QueueService
}

func newTestServices() *testServices {
	s := &testServices{
		repo:       newMockRepository(),
		player:     &mockAudioPlayer{},
		voiceConn:  &mockVoiceConnection{},
		voiceState: newMockVoiceStateProvider(),
		resolver:   &mockTrackResolver{},
		notifier:   &mockNotifier{},
		reporter:   &mockReporter{},
	}
	s.voice = NewVoiceChannelService(s.repo, s.voiceConn, s.voiceState, s.notifier)
	s.loader = NewTrackLoaderService(s.resolver)
	s.playback = NewPlaybackService(s.repo, s.player, s.voiceState, s.notifier, s.voice, s.loader)
	s.queue = NewQueueService(s.repo, s.player, s.voiceState)
	return s
}
