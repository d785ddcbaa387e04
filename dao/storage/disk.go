package storage

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Disk 把上传文件保存到一个公开目录，通过固定的 URL 前缀访问
type Disk struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
}

// NewDisk 创建存储并确保目录存在
// 生产环境传 afero.NewOsFs()，测试中传 afero.NewMemMapFs()
func NewDisk(fs afero.Fs, dir, urlPrefix string) (*Disk, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s failed: %w", dir, err)
	}
	return &Disk{fs: fs, dir: dir, urlPrefix: urlPrefix}, nil
}

// Save 将内容写入 name 对应的文件，返回可访问的 URL
// name 只能是文件名，不允许包含目录
func (d *Disk) Save(name string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid upload file name %q", name)
	}

	f, err := d.fs.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file failed: %w", err)
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = d.fs.Remove(filepath.Join(d.dir, name))
		return "", fmt.Errorf("write upload file failed: %w", err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("close upload file failed: %w", err)
	}
	return path.Join(d.urlPrefix, name), nil
}

// URLPrefix 文件对外访问的路径前缀
func (d *Disk) URLPrefix() string {
	return d.urlPrefix
}

// FileSystem 供 HTTP 静态文件服务使用
func (d *Disk) FileSystem() http.FileSystem {
	return afero.NewHttpFs(d.fs).Dir(d.dir)
}
