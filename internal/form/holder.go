package form

import (
	"errors"
	"sync"

	"github.com/utilitycover/debitnote/pkg/models"
)

// ErrStaleEdit is returned by SetSeq for an edit numbered at or below the
// last sequenced edit the holder applied.
var ErrStaleEdit = errors.New("edit is older than the last applied edit")

// Listener is called with the new record, and the sequence number of the
// last applied edit, after every change.
type Listener func(rec models.PolicyRecord, seq uint64)

// Holder owns the Policy Record of one form session. It is safe for
// concurrent use; listeners run outside the lock, in registration order.
type Holder struct {
	mu        sync.RWMutex
	rec       models.PolicyRecord
	initial   models.PolicyRecord
	seq       uint64 // last applied sequenced edit
	listeners []Listener
}

// NewHolder creates a holder initialised with models.DefaultRecord.
func NewHolder() *Holder {
	return NewHolderWith(models.DefaultRecord())
}

// NewHolderWith creates a holder initialised with rec. Reset returns to rec.
func NewHolderWith(rec models.PolicyRecord) *Holder {
	return &Holder{rec: rec.Clone(), initial: rec.Clone()}
}

// Subscribe registers fn to be called after each change.
func (h *Holder) Subscribe(fn Listener) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Snapshot returns a copy of the current record.
func (h *Holder) Snapshot() models.PolicyRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rec.Clone()
}

// Current returns a copy of the current record with the sequence number of
// the last applied edit.
func (h *Holder) Current() (models.PolicyRecord, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rec.Clone(), h.seq
}

// Set applies a single unsequenced field edit. On ErrUnknownField the
// record is left unchanged and listeners are not called.
func (h *Holder) Set(field, raw string) (models.PolicyRecord, error) {
	rec, _, err := h.SetSeq(field, raw, 0)
	return rec, err
}

// SetSeq applies a field edit numbered seq by the client. Edits must arrive
// with increasing numbers: one numbered at or below the last applied edit
// is rejected with ErrStaleEdit. Zero means unsequenced and is always
// applied. On error the current record is returned unchanged.
func (h *Holder) SetSeq(field, raw string, seq uint64) (models.PolicyRecord, uint64, error) {
	h.mu.Lock()
	if seq != 0 && seq <= h.seq {
		snap, cur := h.rec.Clone(), h.seq
		h.mu.Unlock()
		return snap, cur, ErrStaleEdit
	}
	next, err := Apply(h.rec, field, raw)
	if err != nil {
		snap, cur := h.rec.Clone(), h.seq
		h.mu.Unlock()
		return snap, cur, err
	}
	h.rec = next
	if seq != 0 {
		h.seq = seq
	}
	snap, cur, listeners := h.rec.Clone(), h.seq, h.listenersLocked()
	h.mu.Unlock()

	notify(listeners, snap, cur)
	return snap, cur, nil
}

// Reset restores the record the holder was created with. The edit sequence
// is kept, so a client carries on numbering from where it was.
func (h *Holder) Reset() models.PolicyRecord {
	h.mu.Lock()
	h.rec = h.initial.Clone()
	snap, cur, listeners := h.rec.Clone(), h.seq, h.listenersLocked()
	h.mu.Unlock()

	notify(listeners, snap, cur)
	return snap
}

// listenersLocked returns a copy of the listener list. Must be called with mu held.
func (h *Holder) listenersLocked() []Listener {
	out := make([]Listener, len(h.listeners))
	copy(out, h.listeners)
	return out
}

func notify(listeners []Listener, rec models.PolicyRecord, seq uint64) {
	for _, fn := range listeners {
		fn(rec.Clone(), seq)
	}
}
