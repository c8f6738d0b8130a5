// Package token issues and verifies the signed credentials shared by every
// service.
//
// Any service holding the shared HS256 secret can verify a credential
// locally: [Verifier] checks structure, signature and expiry without I/O,
// and [Guard] rejects credentials issued before the verifying process
// started. [Authenticator] composes both and is what the HTTP middleware
// uses.
//
// Liveness is per process. A credential can be live at one service and stale
// at another that restarted more recently; there is no shared revocation
// list.
package token
