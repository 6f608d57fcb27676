package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

// SetDB replaces the global connection. Used by tooling and tests that open their own dialector.
func SetDB(conn *gorm.DB) {
	db = conn
}

func init() {
	godotenv.Load()
}

// mysqlDSN builds the DSN from DB_* env. A DB_HOST of /cloudsql/<instance> is dialed as a unix socket.
func mysqlDSN() string {
	host := os.Getenv("DB_HOST")
	network, address := "tcp", fmt.Sprintf("%s:%s", host, os.Getenv("DB_PORT"))
	if strings.HasPrefix(host, "/cloudsql/") {
		network, address = "unix", host
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		network,
		address,
		os.Getenv("DB_NAME"),
	)
}

func configurePool(sqlDB *sql.DB) {
	if n := IntFromEnv("DB_MAX_OPEN_CONNS", 50); n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}
	if n := IntFromEnv("DB_MAX_IDLE_CONNS", 25); n >= 0 {
		sqlDB.SetMaxIdleConns(n)
	}
	if d := time.Duration(IntFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second; d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d := time.Duration(IntFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)) * time.Second; d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}
}

// ConnectDatabaseWithRetry blocks until MySQL answers, backing off up to 30s between attempts.
// main calls it after the listener is up so /healthz answers during a slow start.
func ConnectDatabaseWithRetry() {
	dsn := mysqlDSN()

	for attempt := 1; ; attempt++ {
		conn, err := gorm.Open(mysql.Open(dsn), InitConfig())
		if err == nil {
			if sqlDB, derr := conn.DB(); derr == nil {
				configurePool(sqlDB)
			}
			if pluginErr := conn.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			db = conn
			log.Printf("connected to database (attempt=%d)", attempt)
			return
		}

		sleep := min(time.Second*time.Duration(1<<min(attempt, 5)), 30*time.Second)
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

func IntFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// InitConfig is shared by every dialector so duplicate-key errors surface as gorm.ErrDuplicatedKey.
func InitConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				SlowThreshold:             time.Second,
				IgnoreRecordNotFoundError: true,
			},
		),
		NamingStrategy: schema.NamingStrategy{},
		TranslateError: true,
	}
}
