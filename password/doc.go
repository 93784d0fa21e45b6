// Package password provides argon2id hashing for passwords and recovery
// codes, plus the strength policy applied to new passwords.
package password
