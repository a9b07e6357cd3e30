package buffer

import "errors"

var (
	// ErrClosed 在 Save 之后继续使用 PagedStore
	ErrClosed = errors.New("paged store is closed")

	// ErrAddressOutOfRange 访问的地址超出了已分配的页，调用方需要先 Extend
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrInvalidSize 长度或大小参数非法（负数、超过缓冲区等）
	ErrInvalidSize = errors.New("invalid size")

	// ErrInvalidWatermarks 水位线配置不满足 0 <= low < high
	ErrInvalidWatermarks = errors.New("invalid watermarks")
)
