package roommigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	roomtypes "github.com/katilkim/katilkim-server/app/modules/room/domain/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rooms table...")
		_, err := db.NewCreateTable().Model((*roomtypes.Room)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create rooms table: %w", err)
		}

		fmt.Println("Creating players table...")
		_, err = db.NewCreateTable().Model((*roomtypes.Player)(nil)).
			IfNotExists().
			ForeignKey(`("room_id") REFERENCES "rooms" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create players table: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*roomtypes.Player)(nil)).
			Index("players_room_id_idx").
			IfNotExists().
			Column("room_id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create players room_id index: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back room schema...")
		_, err := db.NewDropTable().Model((*roomtypes.Player)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop players table: %w", err)
		}
		_, err = db.NewDropTable().Model((*roomtypes.Room)(nil)).IfExists().Cascade().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop rooms table: %w", err)
		}
		return nil
	})
}
