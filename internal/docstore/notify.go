package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"fooddrop/pkg/platform/sentinel"
)

// notifyHub fans NOTIFY payloads out to document subscriptions. A single
// LISTEN connection serves every subscriber of the store.
type notifyHub struct {
	store *PostgresStore
	dsn   string

	mu       sync.Mutex
	listener *pq.Listener
	subs     map[Ref]map[*subscription]struct{}
	done     chan struct{}
}

func newNotifyHub(store *PostgresStore, dsn string) *notifyHub {
	return &notifyHub{
		store: store,
		dsn:   dsn,
		subs:  make(map[Ref]map[*subscription]struct{}),
	}
}

func (h *notifyHub) start() error {
	if h.listener != nil {
		return nil
	}
	l := pq.NewListener(h.dsn, time.Second, time.Minute, h.onEvent)
	if err := l.Listen(notifyChannel); err != nil {
		_ = l.Close()
		return fmt.Errorf("listen %s: %w", notifyChannel, err)
	}
	h.listener = l
	h.done = make(chan struct{})
	go h.loop(l, h.done)
	return nil
}

func (h *notifyHub) subscribe(ctx context.Context, ref Ref, onChange func(*Snapshot), onError func(error)) (func(), error) {
	h.mu.Lock()
	if err := h.start(); err != nil {
		h.mu.Unlock()
		return nil, err
	}
	sub := newSubscription(ref, onChange, onError)
	if h.subs[ref] == nil {
		h.subs[ref] = make(map[*subscription]struct{})
	}
	h.subs[ref][sub] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		delete(h.subs[ref], sub)
		if len(h.subs[ref]) == 0 {
			delete(h.subs, ref)
		}
		h.mu.Unlock()
		sub.stop()
	}

	// Registered before the initial read so no committed change is missed.
	snap, err := h.read(ctx, ref)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	sub.deliver(snap)
	return unsubscribe, nil
}

func (h *notifyHub) read(ctx context.Context, ref Ref) (*Snapshot, error) {
	snap, err := h.store.Get(ctx, ref)
	if errors.Is(err, sentinel.ErrNotFound) {
		return &Snapshot{Ref: ref}, nil
	}
	return snap, err
}

func (h *notifyHub) loop(l *pq.Listener, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case n, ok := <-l.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnected: notifications may have been lost, refresh everyone.
				h.refreshAll()
				continue
			}
			if ref, ok := parseRef(n.Extra); ok {
				h.refresh(ref)
			}
		}
	}
}

func (h *notifyHub) targets(ref Ref) []*subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscription, 0, len(h.subs[ref]))
	for sub := range h.subs[ref] {
		out = append(out, sub)
	}
	return out
}

func (h *notifyHub) refresh(ref Ref) {
	subs := h.targets(ref)
	if len(subs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := h.read(ctx, ref)
	for _, sub := range subs {
		if err != nil {
			sub.fail(err)
			continue
		}
		sub.deliver(snap)
	}
}

func (h *notifyHub) refreshAll() {
	h.mu.Lock()
	refs := make([]Ref, 0, len(h.subs))
	for ref := range h.subs {
		refs = append(refs, ref)
	}
	h.mu.Unlock()
	for _, ref := range refs {
		h.refresh(ref)
	}
}

// onEvent fails every subscription when the LISTEN connection drops. The
// listener reconnects on its own, but subscribers are not resubscribed.
func (h *notifyHub) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
		if err == nil {
			err = sentinel.ErrUnavailable
		}
		h.failAll(fmt.Errorf("document subscription lost: %w", err))
	}
}

func (h *notifyHub) failAll(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ref, subs := range h.subs {
		for sub := range subs {
			sub.fail(err)
		}
		delete(h.subs, ref)
	}
}

func (h *notifyHub) close() error {
	h.mu.Lock()
	l, done := h.listener, h.done
	h.listener = nil
	h.mu.Unlock()
	if l == nil {
		return nil
	}
	close(done)
	h.failAll(fmt.Errorf("document store closed: %w", sentinel.ErrUnavailable))
	return l.Close()
}

func parseRef(payload string) (Ref, bool) {
	i := strings.LastIndex(payload, "/")
	if i <= 0 || i == len(payload)-1 {
		return Ref{}, false
	}
	return Ref{Collection: payload[:i], ID: payload[i+1:]}, true
}
