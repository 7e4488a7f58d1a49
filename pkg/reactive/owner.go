package reactive

// listener is anything that can be notified when a dependency changes.
type listener interface {
	// markDirty notifies the listener that one of its sources changed.
	markDirty()

	// addSource records a source read while the listener was tracking.
	addSource(s *source)

	// listenerID returns the identifier used for deduplication.
	listenerID() uint64
}

// Owner scopes a set of reactive primitives. It tracks the listener that is
// currently computing, the batch depth and the effects waiting to run.
type Owner struct {
	ids uint64

	// current is the memo or effect recording dependencies, nil when untracked.
	current listener

	batchDepth int
	pending    []*Effect
	flushing   bool

	disposed bool
	effects  []*Effect
}

// NewOwner returns an empty owner.
func NewOwner() *Owner {
	return &Owner{}
}

func (o *Owner) nextID() uint64 {
	o.ids++
	return o.ids
}

// track swaps the current listener and returns the previous one.
func (o *Owner) track(l listener) listener {
	prev := o.current
	o.current = l
	return prev
}

// Batch groups updates. Effects invalidated inside fn run once after the
// outermost Batch returns. Batches nest.
func (o *Owner) Batch(fn func()) {
	o.batchDepth++
	defer func() {
		o.batchDepth--
		if o.batchDepth == 0 {
			o.flush()
		}
	}()
	fn()
}

// Untracked runs fn without recording dependencies for the current listener.
func (o *Owner) Untracked(fn func()) {
	prev := o.track(nil)
	defer o.track(prev)
	fn()
}

// Dispose stops every effect created on the owner. Signals and memos keep
// working but no further side effects run.
func (o *Owner) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true
	for _, e := range o.effects {
		e.Dispose()
	}
	o.effects = nil
	o.pending = nil
}

// Disposed reports whether Dispose has been called.
func (o *Owner) Disposed() bool {
	return o.disposed
}

func (o *Owner) schedule(e *Effect) {
	if o.disposed {
		return
	}
	o.pending = append(o.pending, e)
}

// flush runs queued effects. Effects that schedule further effects are
// picked up by the same loop.
func (o *Owner) flush() {
	if o.flushing {
		return
	}
	o.flushing = true
	defer func() { o.flushing = false }()

	for len(o.pending) > 0 {
		queue := o.pending
		o.pending = nil

		seen := make(map[uint64]bool, len(queue))
		for _, e := range queue {
			if seen[e.id] {
				continue
			}
			seen[e.id] = true
			e.queued = false
			e.run()
		}
	}
}
