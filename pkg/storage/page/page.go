package page

import (
	"errors"
	"fmt"
	"io"

	"blockmem/pkg/storage/disk"
)

// PageSize 定义一页的大小为 1KB (1024 bytes)
// 分页内存以页为单位加载、淘汰和写回
const PageSize = 1024

// PageID 是页面在地址空间中的下标，地址 / PageSize
type PageID int32

const (
	InvalidPageID PageID = -1
)

// ErrNotLoaded 在未加载的页面上读写
var ErrNotLoaded = errors.New("page is not loaded")

// Page 代表地址空间中的一个 1KB 窗口
// 同一时刻最多持有一个内存缓冲区；未加载时 data 为 nil
type Page struct {
	id          PageID
	baseAddress int64
	data        []byte
	loaded      bool
	isDirty     bool
	// lastUse 为 0 表示自创建或上次淘汰以来尚未被访问，不参与淘汰
	lastUse uint64
}

// New 创建一个未加载的页面描述符
func New(id PageID) *Page {
	return &Page{
		id:          id,
		baseAddress: int64(id) * PageSize,
	}
}

// 下面是一些 Helper 方法，方便 PagedStore 使用

func (p *Page) ID() PageID {
	return p.id
}

func (p *Page) BaseAddress() int64 {
	return p.baseAddress
}

func (p *Page) IsLoaded() bool {
	return p.loaded
}

func (p *Page) IsDirty() bool {
	return p.isDirty
}

func (p *Page) LastUse() uint64 {
	return p.lastUse
}

// Touch 用新的访问年龄标记页面
func (p *Page) Touch(age uint64) {
	p.lastUse = age
}

// Load 分配一个全 0 的缓冲区，如果基地址落在文件长度以内就从磁盘读入
// 文件不足一页时，没读到的尾部保持为 0
func (p *Page) Load(f disk.BackingFile) error {
	buf := make([]byte, PageSize)

	length, err := f.Length()
	if err != nil {
		return fmt.Errorf("page %d: length: %w", p.id, err)
	}
	if p.baseAddress < length {
		if _, err := f.Seek(p.baseAddress, io.SeekStart); err != nil {
			return fmt.Errorf("page %d: seek %d: %w", p.id, p.baseAddress, err)
		}
		_, err := io.ReadFull(f, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("page %d: read: %w", p.id, err)
		}
	}

	p.data = buf
	p.loaded = true
	p.isDirty = false
	p.lastUse = 0
	return nil
}

// Unload 释放缓冲区；脏页先写回磁盘
// 写回前显式把文件扩展到覆盖整页，不依赖稀疏文件的行为
func (p *Page) Unload(f disk.BackingFile) error {
	if !p.loaded {
		return nil
	}

	if p.isDirty {
		end := p.baseAddress + PageSize
		length, err := f.Length()
		if err != nil {
			return fmt.Errorf("page %d: length: %w", p.id, err)
		}
		if length < end {
			if err := f.SetLength(end); err != nil {
				return fmt.Errorf("page %d: extend to %d: %w", p.id, end, err)
			}
		}
		if _, err := f.Seek(p.baseAddress, io.SeekStart); err != nil {
			return fmt.Errorf("page %d: seek %d: %w", p.id, p.baseAddress, err)
		}
		n, err := f.Write(p.data)
		if err != nil {
			return fmt.Errorf("page %d: write: %w", p.id, err)
		}
		if n != PageSize {
			return fmt.Errorf("page %d: write: %w", p.id, io.ErrShortWrite)
		}
	}

	p.data = nil
	p.loaded = false
	p.isDirty = false
	p.lastUse = 0
	return nil
}

// ReadByteAt 读取页内偏移 off 处的字节，并标记访问年龄
func (p *Page) ReadByteAt(off int, age uint64) (byte, error) {
	if !p.loaded {
		return 0, fmt.Errorf("page %d: %w", p.id, ErrNotLoaded)
	}
	p.lastUse = age
	return p.data[off], nil
}

// WriteByteAt 写入页内偏移 off 处的字节，标记访问年龄并置脏
func (p *Page) WriteByteAt(off int, v byte, age uint64) error {
	if !p.loaded {
		return fmt.Errorf("page %d: %w", p.id, ErrNotLoaded)
	}
	p.lastUse = age
	p.data[off] = v
	p.isDirty = true
	return nil
}
