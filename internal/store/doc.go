// Package store persists server state in SQLite.
//
// Three small repositories share the database opened by the
// infrastructure/database package:
//
//   - TableStore keeps the raw show tables (attributes, states, cues)
//     exactly as last loaded or edited, serialised to JSON.
//   - CounterStore keeps named integer counters. The cue pointer lives
//     here so the current group survives restarts.
//   - ErrorLog records runtime errors deduplicated by signature, so a
//     fault repeating every tick bumps a counter instead of flooding
//     the table.
//
// None of the stores cache. Every call hits the database, which is
// fine at the rates this server operates at.
package store
