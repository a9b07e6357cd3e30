package mapped

import (
	"fmt"
	"strconv"
	"strings"
)

// ptr 是所有类型化指针的公共部分：绑定到 File 中的一块分配
type ptr struct {
	f    *File
	addr int64
	size int
}

func (p *ptr) malloc(f *File, n int) error {
	addr, err := f.Malloc(n)
	if err != nil {
		return err
	}
	p.f = f
	p.addr = addr
	p.size = n
	return nil
}

// Addr 返回指针在文件中的地址
func (p *ptr) Addr() int64 {
	return p.addr
}

// Len 返回分配的字节数
func (p *ptr) Len() int {
	return p.size
}

// Dump 以十六进制输出内容，每行 20 个字节
func (p *ptr) Dump(indent int) (string, error) {
	buf, err := p.f.ReadBytes(p.addr, p.size)
	if err != nil {
		return "", err
	}

	margin := strings.Repeat(" ", indent)
	var sb strings.Builder
	sb.WriteString("[")
	for i, b := range buf {
		if i%20 == 0 {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
			sb.WriteString(margin)
		} else {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteString(" ]")
	return sb.String(), nil
}

// Int32Ptr 指向一个 32 位整数
type Int32Ptr struct {
	ptr
}

func NewInt32Ptr(f *File) (*Int32Ptr, error) {
	p := &Int32Ptr{}
	if err := p.malloc(f, 4); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Int32Ptr) Read() (int32, error) {
	return p.f.ReadInt32(p.addr)
}

func (p *Int32Ptr) Write(v int32) error {
	return p.f.WriteInt32(p.addr, v)
}

func (p *Int32Ptr) Dump(int) (string, error) {
	v, err := p.Read()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(int64(v), 10), nil
}

// Int16Ptr 指向一个 16 位整数
type Int16Ptr struct {
	ptr
}

func NewInt16Ptr(f *File) (*Int16Ptr, error) {
	p := &Int16Ptr{}
	if err := p.malloc(f, 2); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Int16Ptr) Read() (int16, error) {
	return p.f.ReadInt16(p.addr)
}

func (p *Int16Ptr) Write(v int16) error {
	return p.f.WriteInt16(p.addr, v)
}

func (p *Int16Ptr) Dump(int) (string, error) {
	v, err := p.Read()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(int64(v), 10), nil
}

// ByteArrayPtr 指向一个定长字节数组；位于文件末尾时可以继续追加
type ByteArrayPtr struct {
	ptr
}

func NewByteArrayPtr(f *File, n int) (*ByteArrayPtr, error) {
	p := &ByteArrayPtr{}
	if err := p.malloc(f, n); err != nil {
		return nil, err
	}
	return p, nil
}

// Append 在数组位于文件末尾时扩展它并写入 data
// 数组后面已经有别的分配时返回 false，内容不变
func (p *ByteArrayPtr) Append(data []byte) (bool, error) {
	ok, err := p.f.Grow(p.addr, p.size, p.size+len(data))
	if err != nil || !ok {
		return false, err
	}
	if err := p.f.WriteBytes(p.addr+int64(p.size), data, len(data)); err != nil {
		return false, err
	}
	p.size += len(data)
	return true, nil
}

// Read 返回整个数组的副本
func (p *ByteArrayPtr) Read() ([]byte, error) {
	return p.f.ReadBytes(p.addr, p.size)
}

// Write 覆盖整个数组，buf 的长度必须和数组一致
func (p *ByteArrayPtr) Write(buf []byte) error {
	if len(buf) != p.size {
		return fmt.Errorf("%w: write %d bytes into %d", ErrLengthMismatch, len(buf), p.size)
	}
	return p.f.WriteBytes(p.addr, buf, p.size)
}

// FixedStrPtr 指向一个定长 ASCII 字符串
type FixedStrPtr struct {
	ByteArrayPtr
}

func NewFixedStrPtr(f *File, n int) (*FixedStrPtr, error) {
	p := &FixedStrPtr{}
	if err := p.malloc(f, n); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FixedStrPtr) Read() (string, error) {
	buf, err := p.ByteArrayPtr.Read()
	if err != nil {
		return "", err
	}
	// 和写入一样，非 ASCII 字节读成 '?'
	for i, b := range buf {
		if b > 0x7f {
			buf[i] = '?'
		}
	}
	return string(buf), nil
}

// Write 写入一个长度正好等于分配长度的字符串
// 大于 0x7f 的字符写成 '?'
func (p *FixedStrPtr) Write(s string) error {
	buf := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0x7f {
			r = '?'
		}
		buf = append(buf, byte(r))
	}
	return p.ByteArrayPtr.Write(buf)
}

func (p *FixedStrPtr) Dump(int) (string, error) {
	s, err := p.Read()
	if err != nil {
		return "", err
	}
	return "'" + s + "'", nil
}

// FourCCPtr 是 RIFF 的四字符块标识
type FourCCPtr struct {
	FixedStrPtr
}

func NewFourCCPtr(f *File) (*FourCCPtr, error) {
	p := &FourCCPtr{}
	if err := p.malloc(f, 4); err != nil {
		return nil, err
	}
	return p, nil
}
