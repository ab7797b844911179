package capsule

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func newTestSnapshot() *Snapshot {
	return &Snapshot{
		Owner:                      solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"),
		InactivityThresholdSeconds: 31_536_000,
		LastActivityUnixSeconds:    1_760_000_000,
		Payload:                    []byte(`{"beneficiaries":[{"address":"B1","share":100}]}`),
		IsActive:                   true,
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"active without executed_at", func(s *Snapshot) {}},
		{"executed", func(s *Snapshot) {
			s.IsActive = false
			s.ExecutedAtUnixSeconds = i64(1_790_000_000)
		}},
		{"empty payload", func(s *Snapshot) { s.Payload = []byte{} }},
		{"negative values", func(s *Snapshot) {
			s.InactivityThresholdSeconds = -1
			s.LastActivityUnixSeconds = math.MinInt64
			s.ExecutedAtUnixSeconds = i64(-86400)
		}},
		{"max values", func(s *Snapshot) {
			s.InactivityThresholdSeconds = math.MaxInt64
			s.LastActivityUnixSeconds = math.MaxInt64
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := newTestSnapshot()
			tt.mutate(want)

			got, ok := Decode(Encode(want))
			require.True(t, ok)
			assert.Equal(t, want.Owner, got.Owner)
			assert.Equal(t, want.InactivityThresholdSeconds, got.InactivityThresholdSeconds)
			assert.Equal(t, want.LastActivityUnixSeconds, got.LastActivityUnixSeconds)
			assert.Equal(t, want.Payload, got.Payload)
			assert.Equal(t, want.IsActive, got.IsActive)
			assert.Equal(t, want.ExecutedAtUnixSeconds, got.ExecutedAtUnixSeconds)
		})
	}
}

func TestDecodeSignExtension(t *testing.T) {
	data := Encode(newTestSnapshot())
	// threshold field: all 0xff is -1, not a clamped or unsigned value
	for i := 40; i < 48; i++ {
		data[i] = 0xff
	}
	s, ok := Decode(data)
	require.True(t, ok)
	assert.Equal(t, int64(-1), s.InactivityThresholdSeconds)
}

func TestDecodeRejectsEveryTruncation(t *testing.T) {
	s := newTestSnapshot()
	s.ExecutedAtUnixSeconds = i64(1_790_000_000)
	data := Encode(s)

	for n := 0; n < len(data); n++ {
		got, ok := Decode(data[:n])
		assert.False(t, ok, "prefix of %d bytes decoded", n)
		assert.Nil(t, got)
	}
}

func TestDecodePayloadLengthOverrun(t *testing.T) {
	data := Encode(newTestSnapshot())
	binary.LittleEndian.PutUint32(data[56:60], math.MaxUint32)
	_, ok := Decode(data)
	assert.False(t, ok)

	// length that covers the payload but leaves no room for the flags
	data = Encode(newTestSnapshot())
	binary.LittleEndian.PutUint32(data[56:60], uint32(len(data)-60-1))
	_, ok = Decode(data)
	assert.False(t, ok)
}

func TestDecodePayloadLengthAlignsFlags(t *testing.T) {
	s := newTestSnapshot()
	s.Payload = []byte{1, 1, 1, 1}
	s.IsActive = false
	data := Encode(s)

	got, ok := Decode(data)
	require.True(t, ok)
	assert.False(t, got.IsActive, "flag must be read after the payload, not inside it")
	assert.Nil(t, got.ExecutedAtUnixSeconds)
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	data := append(Encode(newTestSnapshot()), make([]byte, 64)...)
	got, ok := Decode(data)
	require.True(t, ok)
	assert.Nil(t, got.ExecutedAtUnixSeconds)
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	data := Encode(newTestSnapshot())
	got, ok := Decode(data)
	require.True(t, ok)
	data[60] = 'X'
	assert.Equal(t, byte('{'), got.Payload[0])
}

func TestDecodeRandomInputNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		buf := make([]byte, rng.Intn(200))
		rng.Read(buf)
		if len(buf) >= 60 && rng.Intn(2) == 0 {
			binary.LittleEndian.PutUint32(buf[56:60], uint32(rng.Intn(len(buf))))
		}
		assert.NotPanics(t, func() { Decode(buf) })
	}
}

func TestDecodeAllSkipsForeignAccounts(t *testing.T) {
	good := newTestSnapshot()
	addrA := solana.NewWallet().PublicKey()
	addrB := solana.NewWallet().PublicKey()

	snaps, skipped := DecodeAll([]Account{
		{Address: addrA, Data: Encode(good)},
		{Address: addrB, Data: []byte{1, 2, 3}},
	})
	require.Len(t, snaps, 1)
	assert.Equal(t, addrA, snaps[0].Address)
	assert.Equal(t, []solana.PublicKey{addrB}, skipped)
}

func TestSnapshotDormancy(t *testing.T) {
	s := newTestSnapshot()
	now := time.Unix(s.LastActivityUnixSeconds+s.InactivityThresholdSeconds, 0)
	assert.True(t, s.Dormant(now))
	assert.False(t, s.Dormant(now.Add(-time.Second)))
	assert.Equal(t, now.Unix(), s.ExecutableAt())
	assert.False(t, s.Executed())
}

func FuzzDecode(f *testing.F) {
	f.Add(Encode(newTestSnapshot()))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, data []byte) {
		s, ok := Decode(data)
		if !ok {
			if s != nil {
				t.Fatal("failed decode returned a snapshot")
			}
			return
		}
		if len(s.Payload) > len(data) {
			t.Fatal("payload longer than input")
		}
	})
}
