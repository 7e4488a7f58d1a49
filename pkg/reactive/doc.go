// Package reactive is a small owner-scoped reactive runtime.
//
// A Signal holds a value. A Memo derives a value from signals and other memos
// and recomputes lazily after any of its sources change. An Effect re-runs a
// side effect when the values it read change.
//
// Unlike a goroutine-scoped runtime, every primitive belongs to an Owner, and
// dependency tracking is recorded on that Owner. An Owner is not safe for
// concurrent use: one logical owner drives all reads and writes, and callers
// that share an Owner across goroutines must serialize access themselves.
//
//	owner := reactive.NewOwner()
//	count := reactive.NewSignal(owner, 1)
//	double := reactive.NewMemo(owner, func() int { return count.Get() * 2 })
//
//	count.Set(4)
//	double.Get() // 8
//
// Updates inside Batch are coalesced: memos are invalidated immediately but
// effects run once, when the outermost batch returns.
package reactive
