package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/event-ingest/internal/event"
	"github.com/pfrederiksen/event-ingest/internal/logger"
)

// DefaultPause is the wait between consecutive posts
const DefaultPause = 2 * time.Second

// TwitterCredentials are the OAuth 1.0a keys of the posting account
type TwitterCredentials struct {
	APIKey       string `yaml:"api_key"`
	APISecret    string `yaml:"api_secret"`
	AccessToken  string `yaml:"access_token"`
	AccessSecret string `yaml:"access_secret"`
}

// Complete reports whether every credential is set
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts events to Twitter
type TwitterNotifier struct {
	client *twitter.Client
	pause  time.Duration
}

// NewTwitterNotifier creates a notifier signing requests with creds
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, errors.New("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	return newTwitterNotifier(config.Client(oauth1.NoContext, token), DefaultPause), nil
}

func newTwitterNotifier(httpClient *http.Client, pause time.Duration) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient), pause: pause}
}

// Notify posts one status per event, pausing between posts. It stops at the
// first failure.
func (n *TwitterNotifier) Notify(events []*event.Event) error {
	for i, evt := range events {
		status := FormatAnnouncement(evt)

		tweet, _, err := n.client.Statuses.Update(status, nil)
		if err != nil {
			logger.IncrCounter("notify.twitter.error")
			return fmt.Errorf("posting event %s: %w", evt.ID, err)
		}
		logger.IncrCounter("notify.twitter.success")
		logger.Info("Posted event", logger.Fields{"id": evt.ID, "tweet_id": tweet.IDStr})

		if i < len(events)-1 && n.pause > 0 {
			time.Sleep(n.pause)
		}
	}
	return nil
}
