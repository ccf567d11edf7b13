package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// Notifier surfaces non-fatal load problems outside the dashboard page.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// LogNotifier writes notices to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, text string) error {
	log.Printf("notice: %s", text)
	return nil
}

// SlackNotifier posts notices to a channel.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
}

func NewSlackNotifier(api *slack.Client, channelID string) *SlackNotifier {
	return &SlackNotifier{api: api, channelID: channelID}
}

func (n *SlackNotifier) Notify(ctx context.Context, text string) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting to slack channel %s: %w", n.channelID, err)
	}
	return nil
}

// New picks the Slack notifier when a token and channel are configured and
// falls back to the log otherwise.
func New(botToken, channelID string, opts ...slack.Option) Notifier {
	if botToken == "" || channelID == "" {
		return LogNotifier{}
	}
	return NewSlackNotifier(slack.New(botToken, opts...), channelID)
}
