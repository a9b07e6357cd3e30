package disk

// Fault 描述要注入的故障
type Fault struct {
	FailAfterBytes int64 // 累计写入超过该字节数后写失败，-1 表示不限制
	FailOnRead     bool
	FailOnSetLen   bool
	FailOnClose    bool
	Err            error
}

// FaultyBacking 包装一个 BackingFile，按 Fault 注入 I/O 错误
// 只用于测试写回和 Save 的错误传播
type FaultyBacking struct {
	BackingFile
	fault   Fault
	written int64
}

// NewFaultyBacking 创建一个不注入任何故障的包装，之后用 SetFault 配置
func NewFaultyBacking(f BackingFile) *FaultyBacking {
	return &FaultyBacking{
		BackingFile: f,
		fault:       Fault{FailAfterBytes: -1},
	}
}

// SetFault 替换当前的故障规则
func (f *FaultyBacking) SetFault(fault Fault) {
	f.fault = fault
}

// Written 返回成功写入的字节数
func (f *FaultyBacking) Written() int64 {
	return f.written
}

func (f *FaultyBacking) err() error {
	if f.fault.Err != nil {
		return f.fault.Err
	}
	return ErrInjected
}

func (f *FaultyBacking) Read(p []byte) (int, error) {
	if f.fault.FailOnRead {
		return 0, f.err()
	}
	return f.BackingFile.Read(p)
}

func (f *FaultyBacking) Write(p []byte) (int, error) {
	if f.fault.FailAfterBytes >= 0 && f.written+int64(len(p)) > f.fault.FailAfterBytes {
		return 0, f.err()
	}
	n, err := f.BackingFile.Write(p)
	f.written += int64(n)
	return n, err
}

func (f *FaultyBacking) SetLength(n int64) error {
	if f.fault.FailOnSetLen {
		return f.err()
	}
	return f.BackingFile.SetLength(n)
}

func (f *FaultyBacking) Close() error {
	if f.fault.FailOnClose {
		f.BackingFile.Close()
		return f.err()
	}
	return f.BackingFile.Close()
}

var _ BackingFile = (*FaultyBacking)(nil)
