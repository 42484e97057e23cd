// Package monitor implements GPU polling, derived state and the terminal
// dashboard.
//
// # Architecture
//
// A Scheduler runs the query on an Interval and applies each result to a
// State. State keeps the latest samples, a History ring buffer per device
// and metric, and an Animator that eases displayed values toward each new
// sample. The dashboard Model reads from State; it never polls on its own.
//
//	Interval  --tick-->  Scheduler  --query-->  Source (nvidia-smi)
//	                         |
//	                         v
//	                       State  <--read--  Model (Bubble Tea)
//
// # Coalescing
//
// At most one query runs at a time. Ticks that arrive while a query is in
// flight set a single pending flag, so any number of them produce exactly
// one follow-up poll. A result is applied before the in-flight flag is
// cleared, so results land in the order their queries were issued.
//
// # Animation
//
// Each new target starts a linear transition of AnimationDuration from the
// previous target. Deltas below 0.001 snap immediately. While anything is
// moving the Model repaints at 60 FPS; otherwise it only redraws on new
// results, key presses and the one-second header clock.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	r           - Force refresh (coalesces with running polls)
//	m / t       - Toggle memory / temperature gauges
//	j/k, ↑/↓    - Select GPU
//	Enter       - Expand GPU detail view
//	Esc         - Collapse / go back
//	+ / -       - Change refresh interval
//	?           - Toggle help overlay
package monitor
