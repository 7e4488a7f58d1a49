package reactive

// Effect runs a side effect and re-runs it whenever a signal or memo it read
// during its last run changes. Re-runs are deferred to the end of the
// current batch.
type Effect struct {
	owner    *Owner
	id       uint64
	fn       func()
	sources  []*source
	queued   bool
	disposed bool
}

// NewEffect creates an effect owned by o and runs it once immediately to
// collect its dependencies.
func NewEffect(o *Owner, fn func()) *Effect {
	e := &Effect{owner: o, id: o.nextID(), fn: fn}
	o.effects = append(o.effects, e)
	e.run()
	return e
}

// Dispose unsubscribes the effect from its sources. It never runs again.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.clearSources()
}

func (e *Effect) markDirty() {
	if e.disposed || e.queued {
		return
	}
	e.queued = true
	e.owner.schedule(e)
}

func (e *Effect) addSource(s *source) {
	for _, existing := range e.sources {
		if existing == s {
			return
		}
	}
	e.sources = append(e.sources, s)
}

func (e *Effect) listenerID() uint64 {
	return e.id
}

func (e *Effect) clearSources() {
	for _, s := range e.sources {
		s.unsubscribe(e)
	}
	e.sources = e.sources[:0]
}

func (e *Effect) run() {
	if e.disposed {
		return
	}
	e.clearSources()

	prev := e.owner.track(e)
	defer e.owner.track(prev)
	e.fn()
}
