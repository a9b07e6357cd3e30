package disk

import (
	"io"
	"os"
	"path/filepath"
)

// BackingFile 是分页内存所依赖的随机访问字节流
// 只需要 seek/read/write，加上查询和设置长度，以及 close
type BackingFile interface {
	io.ReadWriteSeeker
	// Length 返回当前文件长度（字节）
	Length() (int64, error)
	// SetLength 截断或用 0 扩展文件到 n 字节
	SetLength(n int64) error
	Close() error
}

// FileBacking 用普通的 *os.File 实现 BackingFile
type FileBacking struct {
	file     *os.File
	fileName string
}

// OpenFile 打开或创建后备文件（读写模式，权限 0664）
// 和 DiskManager 一样，目录不存在时先创建
func OpenFile(fileName string) (*FileBacking, error) {
	dir := filepath.Dir(fileName)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}

	file, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE, 0664)
	if err != nil {
		return nil, err
	}
	return &FileBacking{file: file, fileName: fileName}, nil
}

// NewFileBacking 包装一个已经打开的文件
func NewFileBacking(f *os.File) *FileBacking {
	return &FileBacking{file: f, fileName: f.Name()}
}

// Name 返回文件路径
func (b *FileBacking) Name() string {
	return b.fileName
}

func (b *FileBacking) Read(p []byte) (int, error) {
	return b.file.Read(p)
}

func (b *FileBacking) Write(p []byte) (int, error) {
	return b.file.Write(p)
}

func (b *FileBacking) Seek(offset int64, whence int) (int64, error) {
	return b.file.Seek(offset, whence)
}

// Length 通过 Stat 取得文件大小
func (b *FileBacking) Length() (int64, error) {
	info, err := b.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// SetLength 使用 Truncate，扩展部分由操作系统补 0
func (b *FileBacking) SetLength(n int64) error {
	if n < 0 {
		return ErrNegativeOffset
	}
	return b.file.Truncate(n)
}

// Close 关闭文件句柄
func (b *FileBacking) Close() error {
	return b.file.Close()
}

var _ BackingFile = (*FileBacking)(nil)
