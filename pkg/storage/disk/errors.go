package disk

import "errors"

var (
	// ErrClosed 对已关闭的后备文件进行任何操作
	ErrClosed = errors.New("backing file is closed")

	// ErrNegativeOffset Seek/SetLength 得到了负的位置
	ErrNegativeOffset = errors.New("negative offset")

	// ErrInvalidWhence Seek 的 whence 参数不合法
	ErrInvalidWhence = errors.New("invalid whence")

	// ErrInjected FaultyBacking 默认注入的错误
	ErrInjected = errors.New("injected fault")
)
