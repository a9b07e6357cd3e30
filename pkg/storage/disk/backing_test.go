package disk

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBacking(t *testing.T) {
	// 目录不存在时应自动创建
	path := filepath.Join(t.TempDir(), "sub", "test.db")
	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())

	n, err := f.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// 1. 写入并读回
	_, err = f.Seek(10, io.SeekStart)
	require.NoError(t, err)
	_, err = f.Write([]byte("Hello Database World!"))
	require.NoError(t, err)

	n, err = f.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(31), n)

	buf := make([]byte, 31)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadFull(f, buf)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 10), buf[:10])
	assert.Equal(t, "Hello Database World!", string(buf[10:]))

	// 2. SetLength 扩展补 0，截断丢弃尾部
	require.NoError(t, f.SetLength(2048))
	n, _ = f.Length()
	assert.Equal(t, int64(2048), n)

	require.NoError(t, f.SetLength(15))
	n, _ = f.Length()
	assert.Equal(t, int64(15), n)

	assert.ErrorIs(t, f.SetLength(-1), ErrNegativeOffset)
	require.NoError(t, f.Close())
}

func TestMemBacking(t *testing.T) {
	m := NewMemBacking([]byte("abc"))

	n, err := m.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// 在末尾之后写入，中间空洞为 0
	_, err = m.Seek(6, io.SeekStart)
	require.NoError(t, err)
	_, err = m.Write([]byte("xy"))
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0, 'x', 'y'}, m.Bytes())

	// 读到末尾返回 EOF
	_, err = m.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	_, err = m.Read(make([]byte, 4))
	assert.ErrorIs(t, err, io.EOF)

	// 截断之后再扩展，旧数据不能重新出现
	require.NoError(t, m.SetLength(1))
	require.NoError(t, m.SetLength(4))
	assert.Equal(t, []byte{'a', 0, 0, 0}, m.Bytes())

	_, err = m.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, ErrNegativeOffset)

	require.NoError(t, m.Close())
	assert.True(t, m.IsClosed())
	assert.ErrorIs(t, m.Close(), ErrClosed)
	_, err = m.Write([]byte{1})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFaultyBacking(t *testing.T) {
	m := NewMemBacking(nil)
	f := NewFaultyBacking(m)
	f.SetFault(Fault{FailAfterBytes: 5})

	n, err := f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(5), f.Written())

	f.SetFault(Fault{FailAfterBytes: -1, FailOnRead: true, FailOnSetLen: true, FailOnClose: true})
	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrInjected)
	assert.ErrorIs(t, f.SetLength(0), ErrInjected)

	// Close 失败时底层文件仍然被关闭
	assert.ErrorIs(t, f.Close(), ErrInjected)
	assert.True(t, m.IsClosed())
}
