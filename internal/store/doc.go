// Package store provides SQLite-backed durable storage for sophon runs.
//
// The store keeps an append-only log per run:
//   - Runs: seed, configuration and its fingerprint, final E and m
//   - Steps: one row per step summary, with the full summary as JSON
//   - Applications: one row per attempted (op, inputs) pair
//   - Nodes and Edges: the graph snapshot saved at the end of a run
//
// # Critical Patterns
//
// Logical Ordering:
//   - runs order by seq, steps by step number, never by timestamps
//   - every list query carries an explicit ORDER BY
//
// Content-Addressed Applications:
//   - application_key is canon.ApplicationKey(op, inputs), the same key
//     the engine uses for its novelty memory
//
// # Database Configuration
//
// Pragmas travel on the driver DSN so every connection gets them:
// journal_mode=WAL, synchronous=NORMAL, busy_timeout=5000 and
// foreign_keys=on. Schema changes after schema.sql are numbered
// migrations tracked in user_version.
package store
