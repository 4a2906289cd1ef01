package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediafeed/backend/common"

	"github.com/burugo/thing"
	redisCache "github.com/burugo/thing/drivers/cache/redis"
	"github.com/burugo/thing/drivers/db/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB backs the Post Store.
var DB *gorm.DB

func createRootAccountIfNeed() error {
	if common.AdminEmail == "" || common.AdminPassword == "" {
		return nil
	}
	if IsEmailAlreadyTaken(common.AdminEmail) {
		return nil
	}
	common.SysLog("creating bootstrap superuser", "email", common.AdminEmail)
	rootUser := &User{
		Email:       common.AdminEmail,
		Password:    common.AdminPassword,
		IsActive:    true,
		IsSuperuser: true,
		IsVerified:  true,
	}
	return rootUser.Insert()
}

func ensureSQLiteDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory %s: %w", dir, err)
	}
	return nil
}

// openPostDB picks the Post Store engine: SQL_DSN selects Postgres or MySQL,
// otherwise the posts table lives next to the users in the SQLite file.
func openPostDB() (*gorm.DB, error) {
	config := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	}
	dsn := common.SQLDSN
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		common.SysLog("Using PostgreSQL database for posts")
		return gorm.Open(postgres.Open(dsn), config)
	case dsn != "":
		common.SysLog("Using MySQL database for posts")
		return gorm.Open(mysql.Open(dsn), config)
	}

	common.SysLog("SQL_DSN not set, using SQLite as database for posts", "path", common.SQLitePath)
	db, err := gorm.Open(gormsqlite.Open(common.SQLitePath), config)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func InitDB() (err error) {
	if err := ensureSQLiteDir(common.SQLitePath); err != nil {
		return err
	}

	dbAdapter, err := sqlite.NewSQLiteAdapter(common.SQLitePath)
	if err != nil {
		return fmt.Errorf("open user database: %w", err)
	}
	var cacheClient thing.CacheClient = nil
	if common.RedisEnabled && common.RDB != nil {
		cacheClient, err = redisCache.NewClient(common.RDB, nil)
		if err != nil {
			return err
		}
	}
	thing.Configure(dbAdapter, cacheClient)

	if err = thing.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := UserInit(); err != nil {
		return err
	}

	postDB, err := openPostDB()
	if err != nil {
		return fmt.Errorf("open post database: %w", err)
	}
	if err = postDB.AutoMigrate(&Post{}); err != nil {
		return fmt.Errorf("migrate posts: %w", err)
	}
	DB = postDB

	if err = createRootAccountIfNeed(); err != nil {
		return fmt.Errorf("create bootstrap superuser: %w", err)
	}

	common.SysLog("Database initialized successfully.")
	return nil
}

func CloseDB() error {
	// thing keeps its adapter for the lifetime of the process.
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	common.SysLog("Closing database connection.")
	return sqlDB.Close()
}
