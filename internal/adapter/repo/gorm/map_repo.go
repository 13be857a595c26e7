package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tilebot/internal/app/ports"
	"tilebot/internal/domain/world"
)

// TileRow is the persisted shape of one cached tile.
type TileRow struct {
	X         int       `gorm:"column:x;primaryKey"`
	Y         int       `gorm:"column:y;primaryKey"`
	Type      string    `gorm:"column:type;not null"`
	FetchedAt time.Time `gorm:"column:fetched_at;not null"`
}

func (TileRow) TableName() string { return "tiles" }

// MapRepo caches tiles with a freshness TTL. A row older than the TTL is
// treated as a miss so the caller re-fetches; it stays on disk until the next
// upsert overwrites it.
type MapRepo struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewMapRepo(db *gorm.DB, ttl time.Duration) *MapRepo {
	return &MapRepo{db: db, ttl: ttl, now: time.Now}
}

func (r *MapRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&TileRow{})
}

func (r *MapRepo) GetTile(ctx context.Context, c world.Coord) (world.TileType, bool, error) {
	var row TileRow
	err := r.db.WithContext(ctx).
		Where(map[string]any{"x": c.X, "y": c.Y}).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	if r.ttl > 0 && r.now().Sub(row.FetchedAt) > r.ttl {
		return "", false, nil
	}
	return world.TileType(row.Type), true, nil
}

func (r *MapRepo) PutTiles(ctx context.Context, records []ports.TileRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]TileRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, TileRow{
			X:         rec.Coord.X,
			Y:         rec.Coord.Y,
			Type:      string(rec.Type),
			FetchedAt: rec.FetchedAt,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "x"}, {Name: "y"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "fetched_at"}),
	}).Create(&rows).Error
}

var _ ports.MapStore = (*MapRepo)(nil)
