package packed_test

import (
	"testing"

	"github.com/meta-toolkit/metago/packed"
	"github.com/stretchr/testify/require"
)

func TestRoundTripScalars(t *testing.T) {
	w := packed.NewWriter()
	w.Uvarint(0)
	w.Uvarint(127)
	w.Uvarint(128)
	w.Uvarint(1 << 40)
	w.Varint(-1)
	w.Varint(1)
	w.Varint(-1 << 40)
	w.Float64(3.14159)
	w.CString("hello")
	w.Byte(0xAB)

	r := packed.NewReader(w.Bytes())
	require.Equal(t, uint64(0), r.Uvarint())
	require.Equal(t, uint64(127), r.Uvarint())
	require.Equal(t, uint64(128), r.Uvarint())
	require.Equal(t, uint64(1<<40), r.Uvarint())
	require.Equal(t, int64(-1), r.Varint())
	require.Equal(t, int64(1), r.Varint())
	require.Equal(t, int64(-1<<40), r.Varint())
	require.InDelta(t, 3.14159, r.Float64(), 1e-12)
	require.Equal(t, "hello", r.CString())
	require.Equal(t, byte(0xAB), r.Byte())
	require.NoError(t, r.Err())
	require.Equal(t, 0, r.Remaining())
}

func TestReaderErrorsOnTruncatedStream(t *testing.T) {
	r := packed.NewReader([]byte{0x80}) // continuation bit set, no more bytes
	r.Uvarint()
	require.Error(t, r.Err())
}

func TestReaderCStringMissingTerminator(t *testing.T) {
	r := packed.NewReader([]byte("no-nul-here"))
	r.CString()
	require.Error(t, r.Err())
}
