// Package auth holds users and login sessions.
//
// Passwords are hashed with bcrypt. Sessions are identified by prefixed
// ULIDs that clients present either as a bearer token or in the session
// cookie. Every session carries the user's groups so package visibility can
// be decided without another lookup.
package auth
