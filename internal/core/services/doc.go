// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The two stateful services are TokenManager, which owns the credential
// lifecycle, and SaveEngine, which owns the conditional-write protocol.
// Session is the thin composition root wiring them together for one
// document session.
//
// Services are pure Go with no external dependencies.
package services
