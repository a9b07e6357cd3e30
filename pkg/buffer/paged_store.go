package buffer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"blockmem/pkg/storage/disk"
	"blockmem/pkg/storage/page"

	"github.com/dustin/go-humanize"
)

// PagedStore 用普通文件模拟内存映射：一个可增长、按字节寻址的地址空间
// 按页在第一次访问时加载，超过高水位时按 LRU 淘汰到低水位，只写回脏页
// 不支持并发访问，调用方负责串行化
type PagedStore struct {
	file     disk.BackingFile
	pages    []*page.Page // 地址 / PageSize 即下标，只追加不删除
	replacer *LRUReplacer
	logger   *slog.Logger

	highWater int
	lowWater  int
	age       uint64 // 每次读写都取下一个值，首次访问得到 1
	resident  int    // 当前持有缓冲区的页数
	stats     Stats
	closed    bool
}

// NewPagedStore 创建一个空的地址空间，之后用 Extend 扩展
// PagedStore 独占 file，Save 时会关闭它
func NewPagedStore(file disk.BackingFile, opts ...Option) (*PagedStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.lowWater < 0 || o.lowWater >= o.highWater {
		return nil, fmt.Errorf("%w: high=%d low=%d", ErrInvalidWatermarks, o.highWater, o.lowWater)
	}
	if o.logger == nil {
		o.logger = discardLogger()
	}

	return &PagedStore{
		file:      file,
		replacer:  NewLRUReplacer(),
		logger:    o.logger,
		highWater: o.highWater,
		lowWater:  o.lowWater,
	}, nil
}

// Len 返回当前已分配的地址空间大小，总是 PageSize 的整数倍
func (s *PagedStore) Len() int64 {
	return int64(len(s.pages)) * page.PageSize
}

// PageCount 返回已分配的页数
func (s *PagedStore) PageCount() int {
	return len(s.pages)
}

// Resident 返回当前常驻内存的页数
func (s *PagedStore) Resident() int {
	return s.resident
}

// IsResident 报告第 idx 页是否常驻
func (s *PagedStore) IsResident(idx int) bool {
	if idx < 0 || idx >= len(s.pages) {
		return false
	}
	return s.pages[idx].IsLoaded()
}

// Stats 返回计数的快照
func (s *PagedStore) Stats() Stats {
	return s.stats
}

// Extend 保证地址空间至少覆盖 newSize 字节，按页向上取整，从不截断
func (s *PagedStore) Extend(newSize int64) error {
	if s.closed {
		return ErrClosed
	}
	if newSize < 0 {
		return fmt.Errorf("%w: extend to %d", ErrInvalidSize, newSize)
	}

	count := newSize / page.PageSize
	if newSize%page.PageSize != 0 {
		count++
	}
	if count > math.MaxInt32 {
		return fmt.Errorf("%w: extend to %d", ErrInvalidSize, newSize)
	}
	for i := int64(len(s.pages)); i < count; i++ {
		s.pages = append(s.pages, page.New(page.PageID(i)))
	}
	return nil
}

// ReadByteAt 读取地址 addr 处的字节
func (s *PagedStore) ReadByteAt(addr int64) (byte, error) {
	p, err := s.fetch(addr)
	if err != nil {
		return 0, err
	}
	return p.ReadByteAt(int(addr-p.BaseAddress()), s.nextAge())
}

// WriteByteAt 写入地址 addr 处的字节，所在页变脏
func (s *PagedStore) WriteByteAt(addr int64, v byte) error {
	p, err := s.fetch(addr)
	if err != nil {
		return err
	}
	return p.WriteByteAt(int(addr-p.BaseAddress()), v, s.nextAge())
}

// ReadBytes 从 addr 开始读取 n 个字节，返回新的切片
// 逐字节调用 ReadByteAt，跨页和对齐都不影响结果
func (s *PagedStore) ReadBytes(addr int64, n int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: read %d bytes", ErrInvalidSize, n)
	}
	// 分配缓冲区之前先检查范围
	if addr < 0 || int64(n) > s.Len()-addr {
		return nil, fmt.Errorf("%w: read %d bytes at %d, %d pages allocated", ErrAddressOutOfRange, n, addr, len(s.pages))
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := s.ReadByteAt(addr + int64(i))
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// WriteBytes 把 buf 的前 n 个字节写到 addr 开始的位置
func (s *PagedStore) WriteBytes(addr int64, buf []byte, n int) error {
	if n < 0 || n > len(buf) {
		return fmt.Errorf("%w: write %d of %d bytes", ErrInvalidSize, n, len(buf))
	}
	for i := 0; i < n; i++ {
		if err := s.WriteByteAt(addr+int64(i), buf[i]); err != nil {
			return err
		}
	}
	return nil
}

// Save 写回所有脏页，把文件截断到 length 字节并关闭
// 只能调用一次，之后任何读写都返回 ErrClosed
func (s *PagedStore) Save(length int64) error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	if length < 0 {
		return s.abort(fmt.Errorf("%w: save length %d", ErrInvalidSize, length))
	}

	written := s.stats.WriteBacks
	for _, p := range s.pages {
		if err := s.unload(p); err != nil {
			return s.abort(err)
		}
	}
	if err := s.file.SetLength(length); err != nil {
		return s.abort(fmt.Errorf("save: truncate to %d: %w", length, err))
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("save: close: %w", err)
	}

	s.logger.Info("saved paged store",
		"length", humanize.Bytes(uint64(length)),
		"pages", len(s.pages),
		"written_back", s.stats.WriteBacks-written,
	)
	return nil
}

// abort 在 Save 失败时关闭文件，关闭的错误和原始错误一起返回
func (s *PagedStore) abort(err error) error {
	if cerr := s.file.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("save: close: %w", cerr))
	}
	return err
}

// fetch 地址翻译：找到 addr 所在的页，未加载时先加载（缺页）
func (s *PagedStore) fetch(addr int64) (*page.Page, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if addr < 0 || addr >= s.Len() {
		return nil, fmt.Errorf("%w: address %d, %d pages allocated", ErrAddressOutOfRange, addr, len(s.pages))
	}

	p := s.pages[addr/page.PageSize]
	if p.IsLoaded() {
		s.stats.Hits++
		return p, nil
	}

	if err := p.Load(s.file); err != nil {
		return nil, err
	}
	s.resident++
	s.stats.Faults++

	// 刚加载的页 lastUse 还是 0，不会被这一轮淘汰掉
	if s.resident >= s.highWater {
		if err := s.evict(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// evict 不断淘汰最久未使用的页，直到常驻页数降到低水位
func (s *PagedStore) evict() error {
	for s.resident > s.lowWater {
		id := s.replacer.Victim(s.pages)
		if id == page.InvalidPageID {
			return nil
		}
		victim := s.pages[id]
		s.logger.Debug("evicting page",
			"page", id,
			"base", victim.BaseAddress(),
			"dirty", victim.IsDirty(),
			"last_use", victim.LastUse(),
		)
		if err := s.unload(victim); err != nil {
			return err
		}
		s.stats.Evictions++
	}
	return nil
}

// unload 卸载一个页并维护常驻计数
func (s *PagedStore) unload(p *page.Page) error {
	if !p.IsLoaded() {
		return nil
	}
	dirty := p.IsDirty()
	if err := p.Unload(s.file); err != nil {
		return err
	}
	s.resident--
	if dirty {
		s.stats.WriteBacks++
	}
	return nil
}

func (s *PagedStore) nextAge() uint64 {
	s.age++
	return s.age
}
