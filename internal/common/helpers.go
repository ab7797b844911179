package common

import (
	"strconv"
	"strings"
)

const (
	SOLDecimals       = 9 // SOL has 9 decimals (lamports)
	LamportsPerSOL    = 1_000_000_000
	millisecondsFloor = 1_000_000_000_000 // timestamps above this are milliseconds
)

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return formatWithDecimals(lamports, SOLDecimals)
}

// LamportsToSOLFloat converts lamports to SOL for display-only arithmetic (fiat estimates)
func LamportsToSOLFloat(lamports uint64) float64 {
	whole := lamports / LamportsPerSOL
	frac := lamports % LamportsPerSOL
	return float64(whole) + float64(frac)/LamportsPerSOL
}

// NormalizeUnixSeconds accepts a unix timestamp in seconds or milliseconds and returns seconds.
func NormalizeUnixSeconds(ts int64) int64 {
	if ts > millisecondsFloor || ts < -millisecondsFloor {
		return ts / 1000
	}
	return ts
}

// NormalizeUnixMillis accepts a unix timestamp in seconds or milliseconds and returns milliseconds.
func NormalizeUnixMillis(ts int64) int64 {
	if ts > millisecondsFloor || ts < -millisecondsFloor {
		return ts
	}
	return ts * 1000
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}
