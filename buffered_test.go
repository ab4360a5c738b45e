package rzframe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(t *testing.T, size int) (*BufferedSink, *recordingSink) {
	rec := &recordingSink{}
	bs, err := NewBufferedSinkSize(rec, size)
	require.NoError(t, err)
	return bs, rec
}

func TestBufferedSink_Constructors(t *testing.T) {
	_, err := NewBufferedSink(nil)
	assert.ErrorIs(t, err, ErrNilIO)

	_, err = NewBufferedSinkSize(&recordingSink{}, 0)
	assert.ErrorIs(t, err, ErrSizeTooSmall)

	bs, err := NewBufferedSink(&recordingSink{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBufferSize, bs.Size())
	assert.Equal(t, DefaultBufferSize, bs.Available())
}

func TestBufferedSink_CoalescesSmallWrites(t *testing.T) {
	bs, rec := newTestSink(t, 8)

	require.NoError(t, bs.WriteRange([]byte("xab"), 1, 2))
	require.NoError(t, bs.WriteRange([]byte("cd"), 0, 2))
	require.NoError(t, bs.WriteByte('e'))
	assert.Empty(t, rec.chunks)
	assert.Equal(t, 5, bs.Buffered())

	require.NoError(t, bs.Flush())
	assert.Equal(t, [][]byte{[]byte("abcde")}, rec.chunks, "flush transfers exactly the pending bytes")
	assert.Equal(t, 1, rec.flushes)
	assert.Zero(t, bs.Buffered())
}

func TestBufferedSink_EmptyFlushTransfersNothing(t *testing.T) {
	bs, rec := newTestSink(t, 8)
	require.NoError(t, bs.Flush())
	assert.Empty(t, rec.chunks)
	assert.Equal(t, 1, rec.flushes)
}

func TestBufferedSink_OverflowFlushesFirst(t *testing.T) {
	bs, rec := newTestSink(t, 8)

	_, err := bs.Write([]byte("abcde"))
	require.NoError(t, err)
	_, err = bs.Write([]byte("fghi"))
	require.NoError(t, err)

	assert.Equal(t, [][]byte{[]byte("abcde")}, rec.chunks)
	assert.Equal(t, 4, bs.Buffered())
}

func TestBufferedSink_ExactFillStaysBuffered(t *testing.T) {
	bs, rec := newTestSink(t, 8)

	_, _ = bs.Write([]byte("abcd"))
	_, _ = bs.Write([]byte("efgh"))
	assert.Empty(t, rec.chunks)
	assert.Zero(t, bs.Available())

	require.NoError(t, bs.WriteByte('i'))
	assert.Equal(t, [][]byte{[]byte("abcdefgh")}, rec.chunks)
	assert.Equal(t, 1, bs.Buffered())
}

func TestBufferedSink_LargeWriteBypassesBuffer(t *testing.T) {
	bs, rec := newTestSink(t, 8)

	_, _ = bs.Write([]byte("abc"))
	_, err := bs.Write([]byte("01234567"))
	require.NoError(t, err)

	assert.Equal(t, [][]byte{[]byte("abc"), []byte("01234567")}, rec.chunks, "pending bytes precede the large chunk")
	assert.Zero(t, bs.Buffered())
}

func TestBufferedSink_PartialSinkWrites(t *testing.T) {
	rec := &recordingSink{maxWrite: 3}
	bs, err := NewBufferedSinkSize(rec, 4)
	require.NoError(t, err)

	_, err = bs.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(rec.bytes()))
	assert.Len(t, rec.chunks, 4)
}

func TestBufferedSink_FailedFlushDropsPending(t *testing.T) {
	boom := errors.New("link down")
	rec := &recordingSink{}
	bs, _ := NewBufferedSinkSize(rec, 8)

	_, _ = bs.Write([]byte("abc"))
	rec.failWith = boom

	err := bs.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, bs.Buffered())

	rec.failWith = nil
	require.NoError(t, bs.Flush())
	assert.Empty(t, rec.chunks, "dropped bytes are not replayed")
}

func TestBufferedSink_Close(t *testing.T) {
	bs, rec := newTestSink(t, 8)
	_, _ = bs.Write([]byte("tail"))

	require.NoError(t, bs.Close())
	assert.Equal(t, "tail", string(rec.bytes()))
	assert.Equal(t, 1, rec.closes)

	require.NoError(t, bs.Close(), "second close is a no-op")
	assert.Equal(t, 1, rec.closes)

	_, err := bs.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, bs.WriteByte('x'), ErrClosed)
}

func TestBufferedSink_CloseAfterFailedFlushStillClosesSink(t *testing.T) {
	rec := &recordingSink{}
	bs, _ := NewBufferedSinkSize(rec, 8)
	_, _ = bs.Write([]byte("abc"))
	rec.failWith = errors.New("link down")

	assert.ErrorIs(t, bs.Close(), ErrTransport)
	assert.Equal(t, 1, rec.closes)
}

func TestBufferedSink_RangeChecks(t *testing.T) {
	bs, _ := newTestSink(t, 8)
	assert.ErrorIs(t, bs.WriteRange([]byte("abc"), 2, 2), ErrOutOfRange)
	assert.ErrorIs(t, bs.WriteRange([]byte("abc"), -1, 1), ErrOutOfRange)
	assert.NoError(t, bs.WriteRange([]byte("abc"), 3, 0))
}
