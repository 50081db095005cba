package domain

import "github.com/disgoorg/snowflake/v2"

// NowPlayingMessage identifies a sent "Now playing" announcement.
// The channel is kept alongside the message since both are needed to delete it.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Encoded   string // track the message announces
}
