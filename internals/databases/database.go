package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sfformation_backend/internals/configs"
)

var DB *gorm.DB

func ConnectDB() {
	db, err := Open(configs.DBDriver)
	if err != nil {
		log.Fatalf("❌ Échec de connexion DB: %v", err)
	}
	DB = db
	log.Printf("✅ DB connectée (driver=%s).", configs.DBDriver)
}

// Open connects gorm with the given driver: postgres (pgx, default),
// pq (lib/pq through database/sql) or sqlite.
func Open(driver string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	switch driver {
	case "sqlite":
		path := getenv("SQLITE_PATH", "sf_formation.db")
		log.Println("🔌 Connexion SQLite:", path)
		return gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), cfg)

	case "pq":
		log.Println("🔌 Connexion PostgreSQL (lib/pq)...")
		sqlDB, err := sql.Open("postgres", postgresDSN())
		if err != nil {
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)

	case "", "postgres":
		log.Println("🔌 Connexion PostgreSQL (pgx)...")
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  postgresDSN(),
			PreferSimpleProtocol: true,
		}), cfg)
	}
	return nil, fmt.Errorf("DB_DRIVER inconnu: %q", driver)
}

func postgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=sf_formation&options=-c%%20statement_timeout=5000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_HOST", "localhost"),
		getenv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		getenv("DB_SSLMODE", "disable"),
	)
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	if configs.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("db not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
