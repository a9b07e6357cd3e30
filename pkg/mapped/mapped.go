// Package mapped 在分页内存之上提供一个简单的“内存映射文件”视图：
// 顺序分配（Malloc）、小端 16/32 位整数读写，以及绑定到固定地址的类型化指针。
// 它只依赖 Memory 接口，不知道页、年龄和脏标记的存在。
package mapped

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// initialSize 新建文件时预先扩展的大小（一页）
const initialSize = 1024

var (
	// ErrInvalidSize 分配或扩展的大小非法
	ErrInvalidSize = errors.New("invalid allocation size")

	// ErrLengthMismatch 写入的数据长度和指针分配的长度不一致
	ErrLengthMismatch = errors.New("length mismatch")
)

// Memory 是上层结构化数据需要的全部接口
// *buffer.PagedStore 实现了它
type Memory interface {
	Extend(newSize int64) error
	ReadByteAt(addr int64) (byte, error)
	WriteByteAt(addr int64, v byte) error
	ReadBytes(addr int64, n int) ([]byte, error)
	WriteBytes(addr int64, buf []byte, n int) error
	Len() int64
	Save(length int64) error
}

// File 在 Memory 上做顺序分配，end 之前的字节都已经分配出去
type File struct {
	mem Memory
	end int64
}

// New 绑定一个 Memory，并预先扩展一页
func New(mem Memory) (*File, error) {
	if err := mem.Extend(initialSize); err != nil {
		return nil, err
	}
	return &File{mem: mem}, nil
}

// Memory 返回底层的 Memory
func (f *File) Memory() Memory {
	return f.mem
}

// End 返回已分配区域的末尾，也就是 Save 时文件的长度
func (f *File) End() int64 {
	return f.end
}

// Malloc 从末尾分配 n 个字节，返回起始地址
func (f *File) Malloc(n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: malloc %d", ErrInvalidSize, n)
	}
	p := f.end
	end := f.end + int64(n)
	if end > f.mem.Len() {
		if err := f.mem.Extend(end); err != nil {
			return 0, err
		}
	}
	f.end = end
	return p, nil
}

// Grow 把 ptr 处长度为 oldSize 的分配扩展到 newSize
// 只有这块分配恰好在末尾时才能成功，否则返回 false
func (f *File) Grow(ptr int64, oldSize, newSize int) (bool, error) {
	if newSize < oldSize {
		return false, fmt.Errorf("%w: grow %d to %d", ErrInvalidSize, oldSize, newSize)
	}
	if ptr+int64(oldSize) != f.end {
		return false, nil
	}
	if _, err := f.Malloc(newSize - oldSize); err != nil {
		return false, err
	}
	return true, nil
}

// Save 把文件截断到已分配的长度并关闭
func (f *File) Save() error {
	return f.mem.Save(f.end)
}

func (f *File) ReadByteAt(p int64) (byte, error) {
	return f.mem.ReadByteAt(p)
}

func (f *File) WriteByteAt(p int64, b byte) error {
	return f.mem.WriteByteAt(p, b)
}

func (f *File) ReadBytes(p int64, n int) ([]byte, error) {
	return f.mem.ReadBytes(p, n)
}

func (f *File) WriteBytes(p int64, buf []byte, n int) error {
	return f.mem.WriteBytes(p, buf, n)
}

// ReadInt32 读取小端有符号 32 位整数
func (f *File) ReadInt32(p int64) (int32, error) {
	buf, err := f.mem.ReadBytes(p, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf)), nil
}

// WriteInt32 写入小端 32 位整数
func (f *File) WriteInt32(p int64, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return f.mem.WriteBytes(p, buf[:], len(buf))
}

// ReadInt16 读取小端有符号 16 位整数
func (f *File) ReadInt16(p int64) (int16, error) {
	buf, err := f.mem.ReadBytes(p, 2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(buf)), nil
}

// WriteInt16 写入小端 16 位整数
func (f *File) WriteInt16(p int64, v int16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	return f.mem.WriteBytes(p, buf[:], len(buf))
}
