package bot

import (
	"bytes"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
)

// ErrorReporter forwards errors that no handler dealt with to the bot operator.
type ErrorReporter interface {
	// Report delivers err raised by the handler named source.
	// trace may be nil, in which case the caller's stack is used.
	Report(source string, err error, trace []byte)

	// Recover reports a panic in progress. It must be called directly via defer.
	Recover(source string)
}

// directMessenger is the subset of *discordgo.Session used to DM the owner.
type directMessenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(
		channelID string,
		data *discordgo.MessageSend,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// OwnerReporter logs errors and sends them, with a trace attachment,
// to the bot owner by direct message.
type OwnerReporter struct {
	messenger directMessenger
	ownerID   string
}

// NewOwnerReporter creates a new OwnerReporter.
// An empty ownerID disables direct messages; errors are still logged.
func NewOwnerReporter(messenger directMessenger, ownerID string) *OwnerReporter {
	return &OwnerReporter{
		messenger: messenger,
		ownerID:   ownerID,
	}
}

// Report logs err and forwards it to the owner.
func (r *OwnerReporter) Report(source string, err error, trace []byte) {
	if trace == nil {
		trace = debug.Stack()
	}

	slog.Error("unhandled error", "source", source, "error", err)

	if r.ownerID == "" || r.messenger == nil {
		return
	}

	channel, dmErr := r.messenger.UserChannelCreate(r.ownerID)
	if dmErr != nil {
		slog.Warn("failed to open owner DM channel", "owner", r.ownerID, "error", dmErr)
		return
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "%v\n\n", err)
	body.Write(trace)

	_, dmErr = r.messenger.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf("Handler `%s` raised an exception", source),
		Files: []*discordgo.File{
			{
				Name:        "traceback.txt",
				ContentType: "text/plain",
				Reader:      &body,
			},
		},
	})
	if dmErr != nil {
		slog.Warn("failed to send error report to owner", "owner", r.ownerID, "error", dmErr)
	}
}

// Recover converts a panic into a report and stops it from unwinding further.
func (r *OwnerReporter) Recover(source string) {
	v := recover()
	if v == nil {
		return
	}

	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	r.Report(source, err, debug.Stack())
}

// Compile-time check that OwnerReporter implements ErrorReporter.
var _ ErrorReporter = (*OwnerReporter)(nil)
