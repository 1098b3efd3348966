package txtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestPrefix(t *testing.T) {
	tests := []struct {
		name     string
		digest   Digest
		bitCount uint
		want     Digest
	}{
		{
			name:     "zero bits yields all-zero prefix",
			digest:   Digest{0xFF, 0xFF},
			bitCount: 0,
			want:     Digest{},
		},
		{
			name:     "full byte boundary",
			digest:   Digest{0xAB, 0xCD, 0xEF},
			bitCount: 8,
			want:     Digest{0xAB, 0x00, 0x00},
		},
		{
			name:     "sub-byte boundary masks trailing bits",
			digest:   Digest{0b10110110},
			bitCount: 4,
			want:     Digest{0b10110000},
		},
		{
			name:     "bitCount at full digest width is a no-op",
			digest:   Digest{0xAB, 0xCD},
			bitCount: DigestSize * 8,
			want:     Digest{0xAB, 0xCD},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.digest.Prefix(tt.bitCount))
		})
	}
}

func TestDigestSharesPrefix(t *testing.T) {
	a := Digest{0b11110000}
	b := Digest{0b11111111}

	assert.True(t, a.SharesPrefix(b, 4), "leading nibble matches")
	assert.False(t, a.SharesPrefix(b, 5), "fifth bit diverges")
}

func TestDigestLaneOf(t *testing.T) {
	tests := []struct {
		name         string
		digest       Digest
		log2NumLanes uint
		want         uint32
	}{
		{"zero shard bits always lane 0", Digest{0xFF}, 0, 0},
		{"top 2 bits select lane", Digest{0b10000000}, 2, 2},
		{"top 3 bits select lane 5", Digest{0b10100000}, 3, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.digest.LaneOf(tt.log2NumLanes))
		})
	}
}

func TestRootPrefixRoundTripsThroughLaneOf(t *testing.T) {
	for rootSize := uint(1); rootSize <= 8; rootSize++ {
		for root := uint64(0); root < uint64(1)<<rootSize; root++ {
			d := RootPrefix(root, rootSize)
			require.Equal(t, root, uint64(d.LaneOf(rootSize)), "rootSize=%d root=%d", rootSize, root)
		}
	}
}

func TestDigestIsZero(t *testing.T) {
	var d Digest
	assert.True(t, d.IsZero())

	d[31] = 1
	assert.False(t, d.IsZero())
}

func TestDigestStringEncodings(t *testing.T) {
	d := Digest{0x01, 0x02, 0xAB}
	assert.Contains(t, d.String(), "0102ab")
	assert.NotEmpty(t, d.Base64())
}
