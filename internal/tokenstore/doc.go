// Package tokenstore persists the AMS credential (access token, refresh token and
// token type) across process restarts.
//
// Storage is split in two layers:
//   - Backend: a small key/value contract with four implementations
//     (file, keyring, env, memory) keyed by fixed string keys.
//   - Store: the credential view used by the HTTP client. It never caches, so a
//     read always observes the latest write.
//
// Token refresh requires writable storage (file, keyring or memory). The env
// backend is read-only and only suits a static, externally managed access token.
package tokenstore
