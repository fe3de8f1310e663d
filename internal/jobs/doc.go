// Package jobs runs the background work of the Manifestor API.
//
//   - ReminderDispatcher: sends the daily reminder event to owners whose
//     stored reminder time matches the current minute
//   - SessionCleanup: deletes expired sessions
//
// Both follow the same shape: a ticker loop started with Start, stopped
// with Stop, and a RunOnce that tests and operators can call directly.
// Failures are logged and the loop keeps going.
package jobs
