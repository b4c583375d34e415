package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yungbote/bidgate-backend/internal/platform/logger"
)

type natsBus struct {
	log    *logger.Logger
	nc     *nats.Conn
	prefix string
}

// NewNATS connects to url and publishes each event on "<prefix>.<topic>".
func NewNATS(url, prefix string, log *logger.Logger) (Bus, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("missing NATS url")
	}
	if log == nil {
		log = logger.Nop()
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "bidgate"
	}
	l := log.With("service", "NATSEventBus")
	nc, err := nats.Connect(url,
		nats.Name("bidgate"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &natsBus{log: l, nc: nc, prefix: prefix}, nil
}

func (b *natsBus) subject(topic string) string { return b.prefix + "." + topic }

func (b *natsBus) Publish(ctx context.Context, ev Event) error {
	if b == nil || b.nc == nil {
		return fmt.Errorf("nats event bus not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.nc.Publish(b.subject(ev.Topic), raw)
}

func (b *natsBus) StartForwarder(ctx context.Context, onEvent func(ev Event)) error {
	if b == nil || b.nc == nil {
		return fmt.Errorf("nats event bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	sub, err := b.nc.Subscribe(b.prefix+".>", func(m *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			b.log.Warn("bad nats event payload", "subject", m.Subject, "error", err)
			return
		}
		onEvent(ev)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	if err := b.nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return fmt.Errorf("nats flush: %w", err)
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

func (b *natsBus) Close() error {
	if b == nil || b.nc == nil {
		return nil
	}
	return b.nc.Drain()
}
