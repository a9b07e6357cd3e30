package page

import (
	"bytes"
	"testing"

	"blockmem/pkg/storage/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageLifecycle(t *testing.T) {
	f := disk.NewMemBacking(nil)
	p := New(2)
	assert.Equal(t, int64(2*PageSize), p.BaseAddress())
	assert.False(t, p.IsLoaded())

	// 1. 未加载时不能访问
	_, err := p.ReadByteAt(0, 1)
	assert.ErrorIs(t, err, ErrNotLoaded)

	// 2. 基地址超出文件长度，加载后全 0，不读磁盘
	require.NoError(t, p.Load(f))
	assert.True(t, p.IsLoaded())
	assert.False(t, p.IsDirty())
	assert.Equal(t, uint64(0), p.LastUse())
	b, err := p.ReadByteAt(100, 7)
	require.NoError(t, err)
	assert.Equal(t, byte(0), b)
	assert.Equal(t, uint64(7), p.LastUse())
	assert.False(t, p.IsDirty())

	// 3. 写入置脏
	require.NoError(t, p.WriteByteAt(5, 0xAB, 8))
	assert.True(t, p.IsDirty())
	assert.Equal(t, uint64(8), p.LastUse())

	// 4. 卸载：文件被显式扩展到整页末尾
	require.NoError(t, p.Unload(f))
	assert.False(t, p.IsLoaded())
	assert.False(t, p.IsDirty())
	assert.Equal(t, uint64(0), p.LastUse())

	data := f.Bytes()
	require.Len(t, data, 3*PageSize)
	assert.Equal(t, byte(0xAB), data[2*PageSize+5])
	assert.True(t, bytes.Equal(make([]byte, 2*PageSize), data[:2*PageSize]))

	// 5. 重新加载后数据还在
	require.NoError(t, p.Load(f))
	b, _ = p.ReadByteAt(5, 9)
	assert.Equal(t, byte(0xAB), b)
}

func TestPageCleanUnloadDoesNotWrite(t *testing.T) {
	f := disk.NewFaultyBacking(disk.NewMemBacking(nil))
	f.SetFault(disk.Fault{FailAfterBytes: 0})

	p := New(0)
	require.NoError(t, p.Load(f))
	_, err := p.ReadByteAt(0, 1)
	require.NoError(t, err)

	// 干净页卸载不会触发任何写入
	require.NoError(t, p.Unload(f))
	assert.Equal(t, int64(0), f.Written())

	// 未加载时 Unload 是空操作
	require.NoError(t, p.Unload(f))
}

func TestPageShortFile(t *testing.T) {
	// 文件只覆盖页面的一部分，剩余部分为 0
	f := disk.NewMemBacking([]byte{1, 2, 3})
	p := New(0)
	require.NoError(t, p.Load(f))

	for i, want := range []byte{1, 2, 3, 0, 0} {
		b, err := p.ReadByteAt(i, uint64(i+1))
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
}

func TestPageWriteBackError(t *testing.T) {
	f := disk.NewFaultyBacking(disk.NewMemBacking(nil))
	f.SetFault(disk.Fault{FailAfterBytes: 10})

	p := New(0)
	require.NoError(t, p.Load(f))
	require.NoError(t, p.WriteByteAt(0, 1, 1))

	err := p.Unload(f)
	assert.ErrorIs(t, err, disk.ErrInjected)
	// 写回失败时页面保持加载和脏状态
	assert.True(t, p.IsLoaded())
	assert.True(t, p.IsDirty())
}
