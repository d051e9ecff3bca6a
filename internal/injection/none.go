package injection

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codespeak-dev/codespeak/internal/logging"
)

// noneBackend types nothing. It backs dry runs such as `codespeak test`.
type noneBackend struct {
	logger *log.Logger
}

func NewNone() Keyboard {
	return &noneBackend{logger: logging.For("injection")}
}

func (n *noneBackend) Name() string { return "none" }

func (n *noneBackend) Available() error { return nil }

func (n *noneBackend) TypeText(ctx context.Context, text string, interval time.Duration) error {
	n.logger.Debug("dry run: type", "text", text)
	return ctx.Err()
}

func (n *noneBackend) PressKey(ctx context.Context, key string, interval time.Duration) error {
	n.logger.Debug("dry run: press", "key", key)
	return ctx.Err()
}

func (n *noneBackend) PressKeys(ctx context.Context, names []string, interval time.Duration) error {
	n.logger.Debug("dry run: press", "keys", len(names))
	return ctx.Err()
}
