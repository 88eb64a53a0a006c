// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CredentialStore: Secure persistence of the serialized credential
//   - TokenExchanger: Code-exchange and refresh calls against the provider
//   - FileStore: Conditional and unconditional remote file writes
//   - DeviceLabelProvider: Human-readable device name for fork filenames
//
// # Optional Interfaces
//
//   - InteractiveAuthorizer: Only needed for the initial sign-in; a host
//     that restores a persisted credential can run without one.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
