package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// DefaultNotifyTimeout bounds a single push notification round.
const DefaultNotifyTimeout = 10 * time.Second

// Notifier delivers a push notification.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// ShoutrrrNotifier sends to every configured shoutrrr service URL.
type ShoutrrrNotifier struct {
	urls   []string
	sender *router.ServiceRouter
}

// NewShoutrrrNotifier parses urls and builds a sender. An invalid URL is
// reported here rather than on the first alert.
func NewShoutrrrNotifier(urls []string, timeout time.Duration) (*ShoutrrrNotifier, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one notification URL is required")
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("invalid notification URL: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	sender.Timeout = timeout
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrNotifier{urls: slices.Clone(urls), sender: sender}, nil
}

// Services returns the number of configured URLs.
func (n *ShoutrrrNotifier) Services() int {
	return len(n.urls)
}

// Notify sends message to all services and joins their errors.
func (n *ShoutrrrNotifier) Notify(ctx context.Context, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := stypes.Params{}
	if title != "" {
		params.SetTitle(title)
	}

	var failed []error
	for _, err := range n.sender.Send(message, &params) {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d notifications failed: %w", len(failed), len(n.urls), errors.Join(failed...))
	}
	return nil
}
