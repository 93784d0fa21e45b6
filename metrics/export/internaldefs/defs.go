// Package internaldefs carries the shared metric name and bucket tables
// used by the exporter packages.
package internaldefs

import (
	authcore "github.com/auxgate/authcore"
)

// CounterDef binds a counter id to its exported name and help text.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram id to its exported name and help text.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricLoginOTPRequired, Name: "authcore_login_otp_required_total", Help: "Logins short-circuited into an OTP challenge."},
	{ID: authcore.MetricLoginOTPSuccess, Name: "authcore_login_otp_success_total", Help: "Completed OTP login challenges."},
	{ID: authcore.MetricLoginOTPFailure, Name: "authcore_login_otp_failure_total", Help: "Failed OTP login challenges."},
	{ID: authcore.MetricSignupSuccess, Name: "authcore_signup_success_total", Help: "Successful account creations."},
	{ID: authcore.MetricSignupDuplicate, Name: "authcore_signup_duplicate_total", Help: "Account creations rejected as duplicate."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: authcore.MetricRefreshExpired, Name: "authcore_refresh_expired_total", Help: "Refresh attempts on expired sessions."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Single-session logout operations."},
	{ID: authcore.MetricSessionCreated, Name: "authcore_session_created_total", Help: "Created sessions."},
	{ID: authcore.MetricSessionRevoked, Name: "authcore_session_revoked_total", Help: "Explicitly revoked sessions."},
	{ID: authcore.MetricSessionsPurged, Name: "authcore_sessions_purged_total", Help: "Mass session revocations."},
	{ID: authcore.MetricRecoverySuccess, Name: "authcore_recovery_success_total", Help: "Consumed recovery escrows."},
	{ID: authcore.MetricRecoveryFailure, Name: "authcore_recovery_failure_total", Help: "Failed recovery attempts."},
	{ID: authcore.MetricEscrowSaved, Name: "authcore_escrow_saved_total", Help: "Saved recovery escrows."},
	{ID: authcore.MetricOTPProvisioned, Name: "authcore_otp_provisioned_total", Help: "Generated OTP secrets."},
	{ID: authcore.MetricOTPActivated, Name: "authcore_otp_activated_total", Help: "Activated two-factor setups."},
	{ID: authcore.MetricOTPDisabled, Name: "authcore_otp_disabled_total", Help: "Disabled two-factor setups."},
	{ID: authcore.MetricPasswordChangeSuccess, Name: "authcore_password_change_success_total", Help: "Successful password changes."},
	{ID: authcore.MetricPasswordChangeFailure, Name: "authcore_password_change_failure_total", Help: "Failed password changes."},
}

var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricValidateLatency, Name: "authcore_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form the
// Prometheus exposition format expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
