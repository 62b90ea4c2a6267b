package shared

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"restoreviews/internal/normalize"
)

// NewNormalizer builds the normalizer from ALIASES_FILE and DATE_TZ.
func (c Config) NewNormalizer() (*normalize.Normalizer, error) {
	reg, err := normalize.LoadRegistry(c.AliasesFile)
	if err != nil {
		return nil, fmt.Errorf("load aliases %q: %w", c.AliasesFile, err)
	}
	return normalize.New(normalize.WithAliases(reg), normalize.WithLocation(c.Location())), nil
}

// OpenMySQL opens and pings the mirror database.
func (c Config) OpenMySQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", c.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(max(4, c.Workers*2))
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Msg("database connection ok")
	return db, nil
}
