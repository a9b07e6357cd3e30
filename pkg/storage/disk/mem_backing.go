package disk

import (
	"io"
)

// MemBacking 是一个纯内存的 BackingFile，行为和普通文件一致：
// 写到末尾之后会自动增长，中间的空洞补 0
type MemBacking struct {
	data   []byte
	pos    int64
	closed bool
}

// NewMemBacking 以给定内容作为初始文件数据（会复制一份）
func NewMemBacking(initial []byte) *MemBacking {
	data := make([]byte, len(initial))
	copy(data, initial)
	return &MemBacking{data: data}
}

func (m *MemBacking) Read(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemBacking) Write(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		m.grow(end)
	}
	n := copy(m.data[m.pos:], p)
	m.pos += int64(n)
	return n, nil
}

func (m *MemBacking) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, ErrInvalidWhence
	}
	if abs < 0 {
		return 0, ErrNegativeOffset
	}
	m.pos = abs
	return abs, nil
}

func (m *MemBacking) Length() (int64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	return int64(len(m.data)), nil
}

func (m *MemBacking) SetLength(n int64) error {
	if m.closed {
		return ErrClosed
	}
	if n < 0 {
		return ErrNegativeOffset
	}
	if n <= int64(len(m.data)) {
		m.data = m.data[:n]
		return nil
	}
	m.grow(n)
	return nil
}

func (m *MemBacking) Close() error {
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	return nil
}

// Bytes 返回当前内容的副本，关闭之后也可以调用（测试用）
func (m *MemBacking) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// IsClosed 报告 Close 是否已被调用
func (m *MemBacking) IsClosed() bool {
	return m.closed
}

// grow 把数据扩展到 n 字节，新增部分为 0
func (m *MemBacking) grow(n int64) {
	if n <= int64(cap(m.data)) {
		old := len(m.data)
		m.data = m.data[:n]
		clear(m.data[old:])
		return
	}
	buf := make([]byte, n, n+n/2)
	copy(buf, m.data)
	m.data = buf
}

var _ BackingFile = (*MemBacking)(nil)
