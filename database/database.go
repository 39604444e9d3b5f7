package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"

	"canteen-service/config"
)

const (
	maxRetries = 10
	retryDelay = 2 * time.Second
	pingTTL    = 5 * time.Second
)

// DB is the single store handle. It is opened once in main and closed on shutdown.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DSN builds the driver connection string for the configured dialect.
func DSN(cfg *config.Config) string {
	if Dialect(cfg.DBDriver) == Postgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
			Host:     net.JoinHostPort(cfg.DBHost, cfg.DBPort),
			Path:     "/" + cfg.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	}
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = cfg.DBHost + ":" + cfg.DBPort
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	// UPDATE must report matched rows, not changed rows, so "not found" can be told apart.
	mc.ClientFoundRows = true
	mc.Loc = time.Local
	return mc.FormatDSN()
}

// InitDB opens the store, waits for it to answer a ping and creates the tables.
func InitDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	dialect := Dialect(cfg.DBDriver)
	dsn := DSN(cfg)

	var (
		db  *sql.DB
		err error
	)
	for i := 1; i <= maxRetries; i++ {
		db, err = sql.Open(dialect.DriverName(), dsn)
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = db.PingContext(pctx)
			cancel()
			if err == nil {
				break
			}
			_ = db.Close()
		}

		log.WithFields(log.Fields{
			"attempt": i,
			"driver":  dialect,
			"host":    cfg.DBHost,
		}).Warn("Database not reachable yet: ", err)

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
	}

	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &DB{DB: db, Dialect: dialect}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// CloseDB releases the handle. Safe on nil.
func (d *DB) CloseDB() {
	if d == nil || d.DB == nil {
		return
	}
	if err := d.DB.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
}
