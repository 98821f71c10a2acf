// Package robot manages the fleet registry: identity, ownership and the
// last-known state of every robot the service brokers commands for.
//
// Persistence lives in a SQLite repository; the Registry layers an
// in-memory cache on top so lookups on the command path never touch the
// database. State updates flow exclusively through the status ingest,
// and every read hands back a clone, so callers never observe a robot
// mid-update.
package robot
