package reactive

// source is the subscriber bookkeeping shared by Signal and Memo.
type source struct {
	owner *Owner
	id    uint64
	subs  []listener
}

func newSource(o *Owner) source {
	return source{owner: o, id: o.nextID()}
}

// read subscribes the owner's current listener, if any.
func (s *source) read() {
	l := s.owner.current
	if l == nil {
		return
	}
	s.subscribe(l)
	l.addSource(s)
}

func (s *source) subscribe(l listener) {
	id := l.listenerID()
	for _, existing := range s.subs {
		if existing.listenerID() == id {
			return
		}
	}
	s.subs = append(s.subs, l)
}

func (s *source) unsubscribe(l listener) {
	id := l.listenerID()
	for i, existing := range s.subs {
		if existing.listenerID() == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notify marks every subscriber dirty inside a batch so effects observe the
// fully invalidated graph.
func (s *source) notify() {
	if len(s.subs) == 0 {
		return
	}
	subs := make([]listener, len(s.subs))
	copy(subs, s.subs)

	s.owner.Batch(func() {
		for _, sub := range subs {
			sub.markDirty()
		}
	})
}
