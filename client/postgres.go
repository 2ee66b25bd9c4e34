package client

import (
	"database/sql"
	"log"
	"status-monitor/config"
	"sync"
	"time"

	_ "github.com/lib/pq"
)

var (
	db   *sql.DB
	once sync.Once
)

// OpenPostgres opens and pings a pool for uri.
func OpenPostgres(uri string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, err
	}

	// Pool sized for one monitor instance: N checks write sequentially.
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(15 * time.Minute)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func ConnectPostgres() *sql.DB {
	once.Do(func() {
		var err error
		db, err = OpenPostgres(config.AppConfig.PostgresURI)
		if err != nil {
			log.Fatal("Postgres connection failed:", err)
		}
	})

	return db
}
