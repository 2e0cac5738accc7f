// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
	roomdb "github.com/katilkim/katilkim-server/app/modules/room/infrastructure/repositories"
	"github.com/katilkim/katilkim-server/config"
)

// DBService bundles the room module's repositories over one connection pool.
type DBService struct {
	RoomDB   *roomdb.RoomDBImpl
	PlayerDB *roomdb.PlayerDBImpl
	db       *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Close releases the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres
// configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bunDB(sqldb)

	dbService := &DBService{
		RoomDB:   &roomdb.RoomDBImpl{DB: db},
		PlayerDB: &roomdb.PlayerDBImpl{DB: db},
		db:       db,
	}

	db.RegisterModel(&roomtypes.Room{})
	db.RegisterModel(&roomtypes.Player{})
	slog.Debug("Database models registered")

	return dbService, nil
}

// bunDB returns a new bun.DB for given sql.DB connection pool.
func bunDB(sqldb *sql.DB) *bun.DB {
	return bun.NewDB(sqldb, pgdialect.New())
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
