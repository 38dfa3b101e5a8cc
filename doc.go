// Package storefront implements a small JSON API over users and items:
// registration, password login, JWT bearer tokens, and an authorization gate
// in front of protected item routes.
//
// Token flow:
//   - Auther verifies a username/password pair against the Users repository
//     using bcrypt and mints an HS256 JWT whose subject is the user id.
//   - TokenService validates presented tokens and classifies failures
//     (expired, bad signature, malformed). The HTTP surface collapses every
//     classification into a single unauthorized response; only logs and
//     activity sinks see the distinction.
//   - middleware/tokenguard extracts the bearer token from a request,
//     validates it, and resolves the subject back to a stored user before the
//     protected handler runs. Nothing about the resolved identity outlives
//     the request.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     login and registration events. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking
//     authentication.
package storefront
