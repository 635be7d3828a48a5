package protocol

// MaxVarintLen is the longest encoding of a uint64.
const MaxVarintLen = 10

// EncodeUvarint writes v into buf as a little-endian base-128 varint and
// returns the number of bytes written. buf must hold MaxVarintLen bytes.
func EncodeUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// DecodeUvarint reads a varint from buf. It returns the value and the
// number of bytes read; n is -1 when buf ends mid-varint and -2 when the
// varint is longer than MaxVarintLen.
func DecodeUvarint(buf []byte) (v uint64, n int) {
	var shift uint
	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, -2
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// UvarintLen returns the encoded size of v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

// stringLen returns the encoded size of a length-prefixed string.
func stringLen(s string) int {
	return UvarintLen(uint64(len(s))) + len(s)
}
