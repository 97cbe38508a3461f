// Package server is the task orchestrator for the cue server.
//
// It owns the data model, the navigator and the node status table,
// and runs the periodic broadcast/poll tasks over the mesh transport:
//
//   - heartbeat: server timestamp, every 250ms, starts immediately
//   - attributes: node identity table, every 2s
//   - states: cue state vocabulary, every 2.5s
//   - current cues: the active group's cues, every 100ms
//   - node poll: ingest node reports and refresh staleness, every 300ms
//   - staleness sweep: every 60s
//   - monitor mirror: retained MQTT state, every 1s (when enabled)
//
// All tasks except the heartbeat wait for a one-shot setup barrier:
// the bootstrap task loads the persisted show (or the built-in
// templates on first run), compiles it and restores the cue pointer
// before the barrier opens.
//
// The server also implements the console's Controller interface, so
// operator commands and scheduled broadcasts share one code path for
// mutating show state.
//
// A console close (/quit or EOF) ends Run cleanly. Any other task
// error is recorded to the deduplicated error log and terminates the
// run; there are no per-task retries beyond each task's natural next
// tick.
package server
