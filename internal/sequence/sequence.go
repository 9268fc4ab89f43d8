// Package sequence issues process-wide monotonic identifiers.
package sequence

import "sync"

// Kind selects an independent counter.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindReading  Kind = "reading"
	KindInvoice  Kind = "invoice"

	// KindCode backs both customer codes and invoice numbers; it starts at
	// 1001 so codes stay aligned with the historical numbering.
	KindCode Kind = "code"
)

const codeStart = 1001

// Sequencer hands out strictly increasing integers per kind. Values are
// never reused, even after the entity they identified is deleted.
type Sequencer struct {
	mu   sync.Mutex
	next map[Kind]int64
}

func New() *Sequencer {
	return &Sequencer{next: make(map[Kind]int64)}
}

// NextID returns the next value for the kind and advances the counter.
func (s *Sequencer) NextID(kind Kind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.next[kind]
	if !ok {
		id = start(kind)
	}
	s.next[kind] = id + 1
	return id
}

// Resume moves the kind's counter past an already-used value, so identifiers
// restored from a snapshot are never reissued.
func (s *Sequencer) Resume(kind Kind, used int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.next[kind]
	if !ok {
		current = start(kind)
	}
	if used+1 > current {
		current = used + 1
	}
	s.next[kind] = current
}

func start(kind Kind) int64 {
	if kind == KindCode {
		return codeStart
	}
	return 1
}
