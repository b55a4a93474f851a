package node

import "sync"

// Event is published after every transaction reaches a final result.
type Event struct {
	Hash      string         `json:"hash"`
	Type      string         `json:"type"`
	Account   string         `json:"account"`
	Result    string         `json:"result"`
	Applied   bool           `json:"applied"`
	LedgerSeq uint64         `json:"ledger_seq"`
	CloseTime int64          `json:"close_time"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// publisher fans events out to subscribers. Slow subscribers drop
// events rather than blocking transaction processing.
type publisher struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func newPublisher() *publisher {
	return &publisher{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a buffered event channel and a cancel function.
func (p *publisher) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		if _, ok := p.subs[ch]; ok {
			delete(p.subs, ch)
			close(ch)
		}
		p.mu.Unlock()
	}
	return ch, cancel
}

func (p *publisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (p *publisher) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		delete(p.subs, ch)
		close(ch)
	}
}
