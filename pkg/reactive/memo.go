package reactive

// Memo is a cached computation. It records the signals and memos read by
// its compute function and is invalidated when any of them change. The
// value is recomputed on the next read, so several writes between two reads
// cost one recomputation.
type Memo[T any] struct {
	src       source
	compute   func() T
	value     T
	valid     bool
	computing bool
	sources   []*source
}

// NewMemo creates a memo owned by o. compute does not run until the first
// Get or Peek.
func NewMemo[T any](o *Owner, compute func() T) *Memo[T] {
	return &Memo[T]{src: newSource(o), compute: compute}
}

// Get returns the memoized value, recomputing it if stale, and records a
// dependency for the current listener.
func (m *Memo[T]) Get() T {
	m.src.read()
	return m.Peek()
}

// Peek returns the memoized value without recording a dependency.
func (m *Memo[T]) Peek() T {
	if !m.valid {
		m.recompute()
	}
	return m.value
}

// ID returns the memo's identifier within its owner.
func (m *Memo[T]) ID() uint64 {
	return m.src.id
}

func (m *Memo[T]) markDirty() {
	if !m.valid {
		return
	}
	m.valid = false
	m.src.notify()
}

func (m *Memo[T]) addSource(s *source) {
	for _, existing := range m.sources {
		if existing == s {
			return
		}
	}
	m.sources = append(m.sources, s)
}

func (m *Memo[T]) listenerID() uint64 {
	return m.src.id
}

func (m *Memo[T]) recompute() {
	// A memo reading itself would recurse forever; keep the stale value.
	if m.computing {
		return
	}
	m.computing = true
	defer func() { m.computing = false }()

	for _, s := range m.sources {
		s.unsubscribe(m)
	}
	m.sources = m.sources[:0]

	prev := m.src.owner.track(m)
	value := m.compute()
	m.src.owner.track(prev)

	m.value = value
	m.valid = true
}
