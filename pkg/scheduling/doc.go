/*
Package scheduling provides the continuation scheduler abstraction used by the
pipe engine, plus ready-made implementations.

A Scheduler accepts a callback and an opaque state value and runs the callback
exactly once on an execution context of its choosing. The pipe engine holds at
most one pending continuation per side and dispatches it through that side's
scheduler, so where resumed readers and writers run is entirely a caller
decision.

Implementations:

  - Inline: runs the continuation on the waking goroutine. Lowest latency;
    the default for both pipe sides.
  - Goroutine: spawns a goroutine per continuation.
  - WorkerPool: a fixed set of worker goroutines draining a bounded queue.
  - Serial: one dedicated goroutine running continuations in submission
    order, for event-loop style integration.

Worker Pool:

	sched := scheduling.NewWorkerPool(4, 64)
	defer sched.Shutdown()

	cfg := pipe.DefaultConfig()
	cfg.ReaderScheduler = sched

Serial executor:

	sched := scheduling.NewSerial()
	defer sched.Close()

	cfg.WriterScheduler = sched

Contract:

Implementations must invoke the callback exactly once and must not drop it
while running. The pipe engine never calls Schedule while holding its
internal lock, so implementations are free to run the callback synchronously.
*/
package scheduling
