// Package totp implements the time-based one-time code authority used for
// second-factor verification.
package totp
