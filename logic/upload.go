package logic

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"teacreek/pkg/errorx"
	"teacreek/pkg/snowflake"

	"go.uber.org/zap"
)

// Upload 保存上传的文件，按上传顺序返回访问 URL
// 文件名为 "<毫秒时间戳>-<雪花ID><原扩展名>"，原始文件名的其余部分丢弃
func (s *Service) Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, errorx.ErrInvalidParam.WithMsg("未上传文件")
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, errorx.ErrTimeout
		}
		url, err := s.saveFile(fh)
		if err != nil {
			zap.L().Error("save upload file failed",
				zap.String("filename", fh.Filename),
				zap.Int64("size", fh.Size),
				zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		urls = append(urls, url)
	}

	s.metrics.UploadedFiles.Add(float64(len(urls)))
	return urls, nil
}

func (s *Service) saveFile(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open multipart file failed: %w", err)
	}
	defer src.Close()

	return s.files.Save(uploadName(fh.Filename, time.Now()), src)
}

func uploadName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), snowflake.GenID(), ext)
}
