package docstore

import "sync"

// subscription delivers snapshots to one listener in order on its own
// goroutine so writers never wait on callbacks.
type subscription struct {
	ref      Ref
	onChange func(*Snapshot)
	onError  func(error)

	mu      sync.Mutex
	queue   []*Snapshot
	failure error
	stopped bool
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSubscription(ref Ref, onChange func(*Snapshot), onError func(error)) *subscription {
	s := &subscription{
		ref:      ref,
		onChange: onChange,
		onError:  onError,
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *subscription) deliver(snap *Snapshot) {
	s.mu.Lock()
	if s.stopped || s.failure != nil {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, snap)
	s.mu.Unlock()
	s.wake()
}

// fail queues a terminal error; onError runs after pending snapshots.
func (s *subscription) fail(err error) {
	s.mu.Lock()
	if s.stopped || s.failure != nil {
		s.mu.Unlock()
		return
	}
	s.failure = err
	s.mu.Unlock()
	s.wake()
}

func (s *subscription) stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *subscription) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signal:
		}
		for {
			s.mu.Lock()
			if s.stopped {
				s.mu.Unlock()
				return
			}
			if len(s.queue) == 0 {
				failure := s.failure
				s.mu.Unlock()
				if failure != nil {
					if s.onError != nil {
						s.onError(failure)
					}
					s.stop()
					return
				}
				break
			}
			snap := s.queue[0]
			s.queue = s.queue[1:]
			s.mu.Unlock()
			if s.onChange != nil {
				s.onChange(snap)
			}
		}
	}
}
