package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	defaultSQLitePath = "quillpress.db"
	sqliteParams      = "_foreign_keys=on&_busy_timeout=5000"

	// sqliteDriverName 注册了 unicode_lower 的 sqlite3 驱动。
	sqliteDriverName = "sqlite3_quillpress"
)

var registerSQLite sync.Once

// registerSQLiteDriver 注册自定义驱动：sqlite 内置 LOWER 只处理 ASCII，
// 每个连接额外提供按 Unicode 规则转小写的 unicode_lower。
func registerSQLiteDriver() {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
			},
		})
	})
}

// LowerExpr returns an SQL expression that lower-cases column with Unicode
// rules on every supported dialect.
func LowerExpr(gdb *gorm.DB, column string) string {
	if gdb.Dialector.Name() == DriverSQLite {
		return "unicode_lower(" + column + ")"
	}
	return "LOWER(" + column + ")"
}

// Open 打开数据库连接并执行自动迁移。
// driver 为空时使用 sqlite，dsn 为空时回退到 quillpress.db。
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName(driver), err)
	}

	if driverName(driver) == DriverSQLite {
		// sqlite 只允许一个写连接，统一走单连接避免 database is locked。
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return gdb, nil
}

// Migrate 为核心模型创建表、唯一索引与外键。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Author{},
		&Category{},
		&Post{},
		&Comment{},
	)
}

// SQLiteDSN appends the pragmas the engine relies on (foreign keys, busy timeout).
func SQLiteDSN(path string) string {
	if strings.Contains(path, "_foreign_keys=") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&" + sqliteParams
	}
	return path + "?" + sqliteParams
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)

	switch driverName(driver) {
	case DriverSQLite:
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		if !isInMemory(dsn) {
			if err := ensureParentDir(dsn); err != nil {
				return nil, err
			}
		}
		registerSQLiteDriver()
		return sqlite.New(sqlite.Config{DriverName: sqliteDriverName, DSN: SQLiteDSN(dsn)}), nil
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func driverName(driver string) string {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		return DriverSQLite
	}
	return name
}

func isInMemory(dsn string) bool {
	return strings.HasPrefix(dsn, "file:") || strings.HasPrefix(dsn, ":memory:")
}

func ensureParentDir(path string) error {
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
