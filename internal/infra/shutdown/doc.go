// Package shutdown stops long-running specs-opt commands cleanly.
//
// Hooks registered with OnShutdown run in reverse order once the context
// passed to Wait ends or the process receives SIGINT or SIGTERM:
//
//	h := shutdown.NewHandler(5*time.Second, log)
//	h.OnShutdown("watcher", func(context.Context) error { return w.Stop() })
//	return h.Wait(ctx)
package shutdown
