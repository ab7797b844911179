package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLamportsToSOL(t *testing.T) {
	assert.Equal(t, "0.024981836", LamportsToSOL(24_981_836))
	assert.Equal(t, "0.000000000", LamportsToSOL(0))
	assert.Equal(t, "12.500000000", LamportsToSOL(12_500_000_000))
	assert.InDelta(t, 12.5, LamportsToSOLFloat(12_500_000_000), 1e-12)
}

func TestNormalizeUnixSeconds(t *testing.T) {
	assert.Equal(t, int64(1_760_000_000), NormalizeUnixSeconds(1_760_000_000))
	assert.Equal(t, int64(1_760_000_000), NormalizeUnixSeconds(1_760_000_000_123))
	assert.Equal(t, int64(0), NormalizeUnixSeconds(0))
}

func TestNormalizeUnixMillis(t *testing.T) {
	assert.Equal(t, int64(1_760_000_000_000), NormalizeUnixMillis(1_760_000_000))
	assert.Equal(t, int64(1_760_000_000_123), NormalizeUnixMillis(1_760_000_000_123))
	assert.Equal(t, int64(0), NormalizeUnixMillis(0))
}
