// Package login implements the authentication and session-lifecycle core of
// the service: credential verification, signed token issuance, single-active-
// session enforcement, login auditing, and the per-request bearer gate.
//
// Sessions:
//   - Each credential row holds at most one live (token, session id) pair. A
//     successful login atomically replaces the pair, so any previously issued
//     token for the same user stops authenticating even though its signature
//     still verifies. Logout soft-deletes the pair server-side.
//
// Tokens:
//   - Tokens are compact HS256-signed JWTs carrying only a user id and issue
//     time. They carry no expiry; freshness is enforced entirely by comparing
//     the presented token to the one stored for the user. The signing key is
//     generated from a CSPRNG at process start unless the Config provides one,
//     so a restart invalidates every outstanding token.
//
// Auditing:
//   - Every successful login appends an immutable audit entry with a coarse
//     browser label parsed from the request User-Agent. The session write and
//     the audit write share one transaction.
package login
