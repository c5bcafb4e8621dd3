// Package auth provides user registration, credential verification, JWT
// issuance and a small user repository persisted as a single JSON document.
//
// Storage:
//   - The whole user collection ({"users": [...], "nextId": N}) is loaded once
//     by the RepositoryManager and kept in memory. Every mutation runs inside
//     RunInTx, which works on a copy, flushes it through the DocumentStore and
//     only then swaps it in. A failed flush leaves the in-memory state intact
//     and is reported as ErrStorage, never as a missing record.
//   - Ids come from nextId and are never reused after a delete.
//   - Writers inside one process are serialized. Two processes sharing the
//     same document will still lose updates: the store overwrites the full
//     document without locking or version checks. Run a single writer.
//
// Authentication:
//   - Passwords are hashed with bcrypt (cost 10) and only ever compared via
//     bcrypt.CompareHashAndPassword.
//   - Login returns an HMAC signed token (HS256 unless SIGNING_METHOD says
//     otherwise) whose subject is the username. The signing key comes from
//     configuration and there is no built-in default.
//   - The jwtware middleware rejects requests without a valid bearer token with
//     401 and stores the claims in the request locals and user context.
package auth
