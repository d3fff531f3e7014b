package scheduling

// Scheduler executes continuations on an execution context of its choosing.
//
// A continuation is a callback plus an opaque state value. Schedule must
// eventually invoke fn(state) exactly once. Callers (the pipe engine in
// particular) never invoke Schedule while holding locks the callback might
// need, so running fn synchronously is always legal.
type Scheduler interface {
	Schedule(fn func(state any), state any)
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func(fn func(state any), state any)

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(fn func(state any), state any) {
	f(fn, state)
}

type inlineScheduler struct{}

func (inlineScheduler) Schedule(fn func(state any), state any) {
	fn(state)
}

// Inline returns the scheduler that runs continuations immediately on the
// waking goroutine. This is the default for both pipe sides: a writer's
// Flush runs the waiting reader's continuation before Flush returns.
func Inline() Scheduler {
	return inlineScheduler{}
}

type goroutineScheduler struct{}

func (goroutineScheduler) Schedule(fn func(state any), state any) {
	go fn(state)
}

// Goroutine returns a scheduler that runs each continuation on its own
// goroutine, decoupling the woken side from the waking thread.
func Goroutine() Scheduler {
	return goroutineScheduler{}
}
