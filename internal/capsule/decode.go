package capsule

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Decode parses raw account bytes. It returns false for truncated or
// inconsistent input and never returns a partially filled snapshot.
func Decode(data []byte) (*Snapshot, bool) {
	if len(data) < MinAccountSize {
		return nil, false
	}

	offset := discriminatorSize
	owner := solana.PublicKeyFromBytes(data[offset : offset+ownerSize])
	offset += ownerSize

	threshold := readI64(data, offset)
	offset += i64Size
	lastActivity := readI64(data, offset)
	offset += i64Size

	payloadLen := uint64(binary.LittleEndian.Uint32(data[offset:]))
	offset += u32Size

	// Payload plus the two flag bytes must fit in what remains.
	remaining := uint64(len(data) - offset)
	if payloadLen > remaining || remaining-payloadLen < 2 {
		return nil, false
	}
	end := offset + int(payloadLen)
	payload := make([]byte, payloadLen)
	copy(payload, data[offset:end])
	offset = end

	isActive := data[offset] == 1
	offset++
	hasExecutedAt := data[offset] == 1
	offset++

	var executedAt *int64
	if hasExecutedAt {
		if len(data)-offset < i64Size {
			return nil, false
		}
		v := readI64(data, offset)
		executedAt = &v
	}

	return &Snapshot{
		Owner:                      owner,
		InactivityThresholdSeconds: threshold,
		LastActivityUnixSeconds:    lastActivity,
		Payload:                    payload,
		IsActive:                   isActive,
		ExecutedAtUnixSeconds:      executedAt,
	}, true
}

// readI64 reads a two's-complement little-endian i64.
func readI64(data []byte, offset int) int64 {
	return int64(binary.LittleEndian.Uint64(data[offset : offset+i64Size]))
}

// Account is one raw program account as returned by a program scan.
type Account struct {
	Address solana.PublicKey
	Data    []byte
}

// DecodeAll decodes a program scan, skipping accounts that are not capsules.
// It returns the decoded snapshots and the addresses that were skipped.
func DecodeAll(accounts []Account) ([]*Snapshot, []solana.PublicKey) {
	snapshots := make([]*Snapshot, 0, len(accounts))
	var skipped []solana.PublicKey
	for _, acc := range accounts {
		s, ok := Decode(acc.Data)
		if !ok {
			skipped = append(skipped, acc.Address)
			continue
		}
		s.Address = acc.Address
		snapshots = append(snapshots, s)
	}
	return snapshots, skipped
}

// Encode serializes s in the account layout, prefixed with AccountDiscriminator.
func Encode(s *Snapshot) []byte {
	size := MinAccountSize + len(s.Payload)
	if s.ExecutedAtUnixSeconds != nil {
		size += i64Size
	}
	buf := make([]byte, 0, size)
	buf = append(buf, AccountDiscriminator[:]...)
	buf = append(buf, s.Owner[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(s.InactivityThresholdSeconds))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(s.LastActivityUnixSeconds))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Payload)))
	buf = append(buf, s.Payload...)
	buf = append(buf, boolByte(s.IsActive))
	if s.ExecutedAtUnixSeconds != nil {
		buf = append(buf, 1)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(*s.ExecutedAtUnixSeconds))
	} else {
		buf = append(buf, 0)
	}
	return buf
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
