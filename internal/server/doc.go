// Package server implements the protected request pipeline and the HTTP
// handlers for the playlist generator.
//
// # Pipeline
//
// Every request flows through an ordered middleware chain; each stage either
// hands off to the next or writes a terminal response:
//
//	Admit -> LogRequests -> WithSession -> [RequireAuth -> RefreshToken] -> handler
//
// [Server.Admit] consults the admission protector and rejects denied or
// unclassifiable requests before anything else runs (fail closed).
//
// [Server.WithSession] resolves the cookie-keyed session, creating an empty
// one on first contact.
//
// [Server.RequireAuth] redirects sessions without an access token to the
// landing page. [Server.RefreshToken] then unconditionally exchanges the
// stored refresh token for a fresh access token, updates the session, and
// installs the credential on the provider client. A missing or rejected
// refresh token terminates the request with a 401; the session's tokens are
// left untouched.
//
// # Handlers
//
// The protected handlers orchestrate the provider workflow: GeneratePlaylist
// chains artist search and recommendation fetch; SavePlaylist chains profile
// lookup, playlist creation, and track addition. Upstream failures carrying a
// structured status and body are relayed verbatim; everything else maps to a
// generic 500.
package server
