package reql

import (
	"sync"

	"github.com/pior/reql/ql2"
)

type slotResult struct {
	resp *ql2.Response
	err  error
}

// pendingSlot is a one-shot completion cell shared between a submitter and
// the reader goroutine. Whoever takes the slot out of the registry owns the
// single send on done; the other party observes the slot already gone.
type pendingSlot struct {
	done chan slotResult
}

func newPendingSlot() *pendingSlot {
	return &pendingSlot{done: make(chan slotResult, 1)}
}

// deliver completes the slot. Only the party that removed the slot from the
// registry may call it, exactly once.
func (s *pendingSlot) deliver(resp *ql2.Response, err error) {
	s.done <- slotResult{resp: resp, err: err}
}

// pendingTable maps in-flight tokens to their slots. Submitters install and
// take-on-cancel; the reader takes-on-deliver. Entries are removed
// atomically, so a slot is completed by exactly one party.
type pendingTable struct {
	slots sync.Map // uint64 -> *pendingSlot
}

func (p *pendingTable) install(token uint64, slot *pendingSlot) error {
	if _, loaded := p.slots.LoadOrStore(token, slot); loaded {
		return errDuplicateToken
	}
	return nil
}

func (p *pendingTable) take(token uint64) (*pendingSlot, bool) {
	v, ok := p.slots.LoadAndDelete(token)
	if !ok {
		return nil, false
	}
	return v.(*pendingSlot), true
}

// drain removes and returns every pending slot. Used at connection teardown.
func (p *pendingTable) drain() []*pendingSlot {
	var taken []*pendingSlot
	p.slots.Range(func(key, _ any) bool {
		if v, ok := p.slots.LoadAndDelete(key); ok {
			taken = append(taken, v.(*pendingSlot))
		}
		return true
	})
	return taken
}
