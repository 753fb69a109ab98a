package minio

import (
	"Ringside/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

var (
	// Client 全局 MinIO 客户端实例
	Client *minio.Client
	// MainBucket 头像等公开资源所在的存储桶
	MainBucket string
)

// Init 初始化 MinIO 客户端并确保主存储桶存在
func Init(cfg config.MinIOConfig) error {
	endpoint, useSSL := cfg.InternalEndpoint, cfg.InternalUseSSL
	if endpoint == "" {
		endpoint, useSSL = cfg.ExternalEndpoint, true
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize minio client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = ensureBucket(ctx, client, cfg.MainBucket); err != nil {
		return err
	}

	Client = client
	MainBucket = cfg.MainBucket
	log.Info("MinIO initialized successfully", "bucket", cfg.MainBucket)
	return nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, "failed to connect to minio server")
	}
	if exists {
		return nil
	}
	if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrapf(err, "create bucket %s", bucket)
	}
	log.Info("MinIO bucket created", "bucket", bucket)
	return nil
}
