package service

import (
	"Ringside/internal/api/config"
	"Ringside/internal/api/dto"
	"Ringside/internal/pkg/database"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(&config.DBConfig{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "ringside.db") + "?_pragma=busy_timeout(5000)",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) GetValue(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) SetWithExpiration(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case string:
		c.data[key] = v
	case bool:
		if v {
			c.data[key] = "1"
		} else {
			c.data[key] = "0"
		}
	default:
		c.data[key] = "?"
	}
	return nil
}

func (c *memoryCache) DeleteKey(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type memoryBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryBlob() *memoryBlob {
	return &memoryBlob{objects: make(map[string][]byte)}
}

func (b *memoryBlob) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, reader); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[objectName] = buf.Bytes()
	return objectName, nil
}

func (b *memoryBlob) DeleteFile(_ context.Context, objectName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectName)
	b.deleted = append(b.deleted, objectName)
	return nil
}

func (b *memoryBlob) GetPublicURL(objectName string) string {
	if objectName == "" {
		return ""
	}
	return "https://static.test/" + objectName
}

type staticDirectory map[string]string

func (d staticDirectory) FindUserDisplay(_ context.Context, userID string) (*dto.UserDisplayDTO, error) {
	name, ok := d[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &dto.UserDisplayDTO{UserID: userID, Name: name}, nil
}

func (d staticDirectory) GetUserSimpleInfo(_ context.Context, userID string) (*dto.UserDTO, error) {
	name, ok := d[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &dto.UserDTO{UserID: userID, Name: name}, nil
}
