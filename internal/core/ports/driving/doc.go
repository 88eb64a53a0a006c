// Package driving defines the interfaces the host application calls.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// Core services implement them; the host's UI and SDK glue consume them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
