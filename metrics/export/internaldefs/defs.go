package internaldefs

import (
	"strconv"
	"strings"

	"github.com/MrEthical07/hireauth"
)

// CounterDef names one engine counter.
type CounterDef struct {
	ID   hireauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine latency histogram.
type HistogramDef struct {
	ID   hireauth.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "hireauth_audit_dropped_total"

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: hireauth.MetricLoginSuccess, Name: "hireauth_login_success_total", Help: "Logins that issued a credential pair."},
	{ID: hireauth.MetricLoginFailure, Name: "hireauth_login_failure_total", Help: "Logins rejected for bad credentials."},
	{ID: hireauth.MetricLoginRateLimited, Name: "hireauth_login_rate_limited_total", Help: "Logins refused by the throttle."},
	{ID: hireauth.MetricRefreshSuccess, Name: "hireauth_refresh_success_total", Help: "Refresh exchanges that issued an access credential."},
	{ID: hireauth.MetricRefreshFailure, Name: "hireauth_refresh_failure_total", Help: "Refresh exchanges rejected."},
	{ID: hireauth.MetricVerifySuccess, Name: "hireauth_verify_success_total", Help: "Access credentials accepted."},
	{ID: hireauth.MetricVerifyMalformed, Name: "hireauth_verify_malformed_total", Help: "Access credentials rejected as malformed."},
	{ID: hireauth.MetricVerifySignatureInvalid, Name: "hireauth_verify_signature_invalid_total", Help: "Access credentials with an invalid signature."},
	{ID: hireauth.MetricVerifyExpired, Name: "hireauth_verify_expired_total", Help: "Expired access credentials."},
	{ID: hireauth.MetricLogout, Name: "hireauth_logout_total", Help: "Logout calls."},
	{ID: hireauth.MetricRegisterSuccess, Name: "hireauth_register_success_total", Help: "Accounts created by self-registration."},
	{ID: hireauth.MetricRegisterDuplicate, Name: "hireauth_register_duplicate_total", Help: "Registrations rejected for an existing email."},
	{ID: hireauth.MetricRegisterInvalid, Name: "hireauth_register_invalid_total", Help: "Registrations rejected by validation."},
	{ID: hireauth.MetricStoreError, Name: "hireauth_store_error_total", Help: "Credential store failures."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: hireauth.MetricVerifyLatency, Name: "hireauth_verify_latency_seconds", Help: "Access credential verification latency."},
}

// BucketCount is the number of histogram buckets including +Inf.
const BucketCount = len(hireauth.HistogramBucketBounds) + 1

// UpperBoundsSeconds returns the finite bucket bounds in seconds.
func UpperBoundsSeconds() []float64 {
	out := make([]float64, len(hireauth.HistogramBucketBounds))
	for i, b := range hireauth.HistogramBucketBounds {
		out[i] = b.Seconds()
	}
	return out
}

// BoundSuffixes returns name-safe bound labels, e.g. "0_00005" and "inf".
func BoundSuffixes() []string {
	out := make([]string, 0, BucketCount)
	for _, b := range UpperBoundsSeconds() {
		out = append(out, strings.ReplaceAll(strconv.FormatFloat(b, 'f', -1, 64), ".", "_"))
	}
	return append(out, "inf")
}

// NormalizeBuckets pads or truncates raw to BucketCount entries.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts to running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
