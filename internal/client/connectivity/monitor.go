// Package connectivity tracks whether the remote store is reachable and
// broadcasts online/offline transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/pubsub"
)

// ProbeTimeout bounds a single Ping issued by Watch.
const ProbeTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor holds the process-wide online flag. Subscribers receive the
// current state on subscription and then one value per transition.
type Monitor struct {
	mu     sync.Mutex
	online bool
	topic  *pubsub.Topic[bool]
	clock  clock.Clock
	logger logging.Logger
}

func NewMonitor(initial bool, clk clock.Clock, logger logging.Logger) *Monitor {
	if clk == nil {
		clk = clock.Real()
	}
	return &Monitor{
		online: initial,
		topic:  pubsub.NewTopic(initial),
		clock:  clk,
		logger: logging.OrDiscard(logger).With("module", "connectivity"),
	}
}

func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the new state and reports whether it was a transition.
func (m *Monitor) Set(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return false
	}
	m.online = online
	m.topic.Publish(online)
	return true
}

func (m *Monitor) Subscribe() *pubsub.Subscription[bool] {
	return m.topic.Subscribe()
}

func (m *Monitor) Unsubscribe(s *pubsub.Subscription[bool]) {
	m.topic.Unsubscribe(s)
}

// Probe pings once and updates the state.
func (m *Monitor) Probe(ctx context.Context, p Pinger) bool {
	pctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	err := p.Ping(pctx)
	online := err == nil
	if m.Set(online) {
		if online {
			m.logger.Info(ctx, "remote store reachable")
		} else {
			m.logger.Warn(ctx, "remote store unreachable", "error", err)
		}
	}
	return online
}

// Watch probes immediately and then every interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context, p Pinger, interval time.Duration) error {
	m.Probe(ctx, p)

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.Probe(ctx, p)
		}
	}
}
