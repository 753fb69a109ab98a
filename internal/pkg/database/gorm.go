package database

import (
	"Ringside/internal/api/config"
	"Ringside/internal/model"
	"Ringside/internal/pkg/logger"
	log "log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// NewGormDB 根据配置选择方言, 初始化 *gorm.DB 并处理连接池
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(cfg.Driver, time.Duration(cfg.SlowThresholdMs)*time.Millisecond),
		PrepareStmt:    cfg.Driver != DriverSQLite,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying DB")
	}

	if cfg.Driver == DriverSQLite {
		// sqlite 仅允许单写连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)
	}

	if err = sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "database connection check failed")
	}

	log.Info("Database connection established successfully.", "driver", cfg.Driver)
	return db, nil
}

// AutoMigrate 同步 IM 与用户表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserDetail{},
		&model.Conversation{},
		&model.Message{},
	)
}

func newDialector(cfg *config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite:
		return sqlite.Open(cfg.DSN), nil
	case DriverMySQL, "":
		dsn, err := mysqldrv.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "invalid mysql dsn")
		}
		// 会话与消息依赖 time.Time 扫描
		dsn.ParseTime = true
		return mysql.Open(dsn.FormatDSN()), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// IsDuplicateError 判断是否为唯一键冲突
func IsDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldrv.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
