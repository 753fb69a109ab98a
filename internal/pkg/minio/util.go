package minio

import (
	"Ringside/internal/api/config"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// UploadFile 上传文件到主存储桶, 返回对象名
func UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if Client == nil {
		return "", errors.New("minio client is not initialized")
	}
	info, err := Client.PutObject(ctx, MainBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload file")
	}
	return info.Key, nil
}

// DeleteFile 删除主存储桶中的文件
func DeleteFile(ctx context.Context, objectName string) error {
	if Client == nil {
		return errors.New("minio client is not initialized")
	}
	if err := Client.RemoveObject(ctx, MainBucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, "failed to delete file")
	}
	return nil
}

// GetPublicURL 对象名转公开访问地址, 已是完整地址或未配置时原样返回
func GetPublicURL(objectName string) string {
	if objectName == "" || strings.HasPrefix(objectName, "http://") || strings.HasPrefix(objectName, "https://") {
		return objectName
	}
	if config.Cfg == nil || config.Cfg.MinIO.ExternalEndpoint == "" {
		return objectName
	}
	return fmt.Sprintf("https://%s/%s/%s", config.Cfg.MinIO.ExternalEndpoint, config.Cfg.MinIO.MainBucket, objectName)
}

// Store 以包级客户端实现对象存储接口
type Store struct{}

func (Store) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	return UploadFile(ctx, objectName, reader, size, contentType)
}

func (Store) DeleteFile(ctx context.Context, objectName string) error {
	return DeleteFile(ctx, objectName)
}

func (Store) GetPublicURL(objectName string) string {
	return GetPublicURL(objectName)
}
