// Package token signs and validates the access and refresh tokens minted
// by the engine.
package token
