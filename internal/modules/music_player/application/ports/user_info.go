package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// UserInfo is how a guild member is shown in the "Now playing" footer.
type UserInfo struct {
	DisplayName string // guild nickname, global name or username
	AvatarURL   string
}

// UserInfoProvider resolves guild members for display.
type UserInfoProvider interface {
	// GetUserInfo looks the member up in the gateway cache before asking the API.
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
