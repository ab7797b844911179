// Package capsule decodes intent capsule accounts owned by the Lucid program.
//
// Account layout (little-endian):
//
//	[0:8]    account discriminator (ignored on decode)
//	[8:40]   owner public key
//	[40:48]  inactivity period, seconds (i64)
//	[48:56]  last activity, unix seconds (i64)
//	[56:60]  intent data length N (u32)
//	[60:60+N] intent data
//	+0       is_active (1 = true)
//	+1       has executed_at (1 = present)
//	+2..+10  executed_at, unix seconds (i64), only when present
package capsule

import (
	"crypto/sha256"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	discriminatorSize = 8
	ownerSize         = 32
	i64Size           = 8
	u32Size           = 4

	// MinAccountSize is the size of an account with an empty payload and no executed_at.
	MinAccountSize = discriminatorSize + ownerSize + i64Size + i64Size + u32Size + 1 + 1
)

// AccountDiscriminator is the 8-byte prefix of IntentCapsule accounts.
var AccountDiscriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("account:IntentCapsule"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// Snapshot is the decoded state of one capsule account.
type Snapshot struct {
	// Address is the capsule account itself; zero when decoded from bare bytes.
	Address                    solana.PublicKey
	Owner                      solana.PublicKey
	InactivityThresholdSeconds int64
	LastActivityUnixSeconds    int64
	Payload                    []byte
	IsActive                   bool
	ExecutedAtUnixSeconds      *int64
}

// ExecutableAt is the unix time at which the inactivity period elapses.
func (s *Snapshot) ExecutableAt() int64 {
	return s.LastActivityUnixSeconds + s.InactivityThresholdSeconds
}

// Dormant reports whether the owner has been silent for at least the capsule's own threshold.
func (s *Snapshot) Dormant(now time.Time) bool {
	return now.Unix()-s.LastActivityUnixSeconds >= s.InactivityThresholdSeconds
}

// Executed reports whether the capsule carries an execution timestamp.
func (s *Snapshot) Executed() bool {
	return s.ExecutedAtUnixSeconds != nil
}
