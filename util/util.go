package util

// Big-endian byte order, matching the on-disk region header tables.

func BytesToUint32(b []byte) (v uint32) {
	length := uint(len(b))
	for i := uint(0); i < length; i++ {
		v <<= 8
		v += uint32(b[i])
	}
	return
}

func Uint32toBytes(b []byte, v uint32) {
	for i := uint(0); i < 4; i++ {
		b[3-i] = byte(v >> (i * 8))
	}
}
