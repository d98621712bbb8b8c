package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trophyangler/internal/domain"
	"trophyangler/internal/geo"
)

// TrophyRepository keeps trophies together with their spatial index rows.
// Every write goes through one transaction that locks the primary row, so
// readers never see a trophy and its index row out of sync.
type TrophyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTrophyRepository(db *gorm.DB) *TrophyRepository {
	return &TrophyRepository{db: db, now: time.Now}
}

// WithClock swaps the clock used to stamp created_at and updated_at.
func (r *TrophyRepository) WithClock(now func() time.Time) *TrophyRepository {
	return &TrophyRepository{db: r.db, now: now}
}

// Put inserts t or, when a trophy with the same id exists, overwrites its
// mutable fields. Identity, owner and created_at of an existing row win.
func (r *TrophyRepository) Put(ctx context.Context, t *domain.Trophy) error {
	if err := ctx.Err(); err != nil {
		return translateError(err)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Trophy
		err := lockTrophy(tx, t.ID, &existing)
		switch {
		case err == nil:
			t.OwnerID = existing.OwnerID
			t.CreatedAt = existing.CreatedAt
			t.UpdatedAt = r.stamp(existing.UpdatedAt)
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := normalize(r.now())
			if t.CreatedAt.IsZero() {
				t.CreatedAt = now
			}
			t.CreatedAt = normalize(t.CreatedAt)
			t.UpdatedAt = now
			if t.UpdatedAt.Before(t.CreatedAt) {
				t.UpdatedAt = t.CreatedAt
			}
		default:
			return err
		}

		prepare(t)
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		return syncIndex(tx, t)
	})
	return translateError(err)
}

func (r *TrophyRepository) Get(ctx context.Context, id string) (*domain.Trophy, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateError(err)
	}
	var t domain.Trophy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translateError(err)
	}
	return &t, nil
}

// Mutate is the atomic per-record update. fn sees the locked current row and
// may change it or return an error to abort without writing anything.
func (r *TrophyRepository) Mutate(ctx context.Context, id string, fn func(t *domain.Trophy) error) (*domain.Trophy, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateError(err)
	}

	var out domain.Trophy
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.Trophy
		if err := lockTrophy(tx, id, &cur); err != nil {
			return err
		}
		prev := cur

		if err := fn(&cur); err != nil {
			return err
		}

		cur.ID = prev.ID
		cur.OwnerID = prev.OwnerID
		cur.CreatedAt = prev.CreatedAt
		cur.UpdatedAt = r.stamp(prev.UpdatedAt)
		prepare(&cur)

		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		if err := syncIndex(tx, &cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// Delete removes the trophy and its index row once guard accepts the
// locked row. A missing id is ErrNotFound.
func (r *TrophyRepository) Delete(ctx context.Context, id string, guard func(t *domain.Trophy) error) error {
	if err := ctx.Err(); err != nil {
		return translateError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.Trophy
		if err := lockTrophy(tx, id, &cur); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&cur); err != nil {
				return err
			}
		}
		if err := tx.Where("trophy_id = ?", id).Delete(&domain.TrophyGeoIndex{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Trophy{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return translateError(err)
}

// ListByOwner returns every trophy of ownerID, newest catch first.
func (r *TrophyRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Trophy, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateError(err)
	}
	var items []domain.Trophy
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("caught_at DESC").Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// ListPublicByOwner returns up to limit public trophies of ownerID.
func (r *TrophyRepository) ListPublicByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Trophy, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateError(err)
	}
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND is_public = ?", ownerID, true).
		Order("caught_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []domain.Trophy
	if err := q.Find(&items).Error; err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// ListPublic pages through all public trophies and reports their total.
func (r *TrophyRepository) ListPublic(ctx context.Context, limit, offset int) ([]domain.Trophy, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, translateError(err)
	}

	var (
		items []domain.Trophy
		total int64
	)
	base := r.db.WithContext(ctx).Model(&domain.Trophy{}).Where("is_public = ?", true)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	q := base.Session(&gorm.Session{}).Order("caught_at DESC").Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return items, total, nil
}

// SearchNearby returns public trophies within radiusKm of center ordered by
// caught_at desc, id asc. Only grid cells overlapping the circle are read.
func (r *TrophyRepository) SearchNearby(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]domain.Trophy, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateError(err)
	}

	cv := geo.CoverCircle(center, radiusKm)
	db := r.db.WithContext(ctx)

	q := db.Model(&domain.Trophy{}).
		Select("trophies.*").
		Joins("JOIN trophy_geo_index g ON g.trophy_id = trophies.id").
		Where("trophies.is_public = ?", true).
		Where("g.cell_lat BETWEEN ? AND ?", cv.LatMin, cv.LatMax)

	if !cv.AllLon && len(cv.LonRanges) > 0 {
		lon := db.Session(&gorm.Session{NewDB: true}).
			Where("g.cell_lon BETWEEN ? AND ?", cv.LonRanges[0].Min, cv.LonRanges[0].Max)
		for _, lr := range cv.LonRanges[1:] {
			lon = lon.Or("g.cell_lon BETWEEN ? AND ?", lr.Min, lr.Max)
		}
		q = q.Where(lon)
	}

	var candidates []domain.Trophy
	if err := q.Find(&candidates).Error; err != nil {
		return nil, translateError(err)
	}

	hits := candidates[:0]
	for _, t := range candidates {
		if geo.HaversineKm(center, geo.Point{Lat: t.Latitude, Lon: t.Longitude}) <= radiusKm {
			hits = append(hits, t)
		}
	}
	SortNewestFirst(hits)

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// DeleteByOwner removes every trophy of ownerID and their index rows.
func (r *TrophyRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, translateError(err)
	}
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = deleteTrophiesOf(tx, ownerID)
		return err
	})
	if err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

// RebuildIndex drops the spatial index and derives it again from the public
// trophies. spatial_key is refreshed on the way.
func (r *TrophyRepository) RebuildIndex(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, translateError(err)
	}

	var indexed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.TrophyGeoIndex{}).Error; err != nil {
			return err
		}

		var batch []domain.Trophy
		res := tx.Where("is_public = ?", true).FindInBatches(&batch, 500, func(_ *gorm.DB, _ int) error {
			rows := make([]domain.TrophyGeoIndex, 0, len(batch))
			for i := range batch {
				t := &batch[i]
				key := geo.CellOf(geo.Point{Lat: t.Latitude, Lon: t.Longitude}).Key()
				if t.SpatialKey != key {
					if err := tx.Model(&domain.Trophy{}).Where("id = ?", t.ID).Update("spatial_key", key).Error; err != nil {
						return err
					}
				}
				rows = append(rows, geoRow(t))
			}
			if len(rows) == 0 {
				return nil
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
			indexed += int64(len(rows))
			return nil
		})
		return res.Error
	})
	if err != nil {
		return 0, translateError(err)
	}
	return indexed, nil
}

// SortNewestFirst orders by caught_at desc and breaks ties by id asc.
func SortNewestFirst(items []domain.Trophy) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CaughtAt.Equal(items[j].CaughtAt) {
			return items[i].CaughtAt.After(items[j].CaughtAt)
		}
		return items[i].ID < items[j].ID
	})
}

func (r *TrophyRepository) stamp(prev time.Time) time.Time {
	now := normalize(r.now())
	if floor := prev.Add(time.Microsecond); !prev.IsZero() && now.Before(floor) {
		return normalize(floor)
	}
	return now
}

func lockTrophy(tx *gorm.DB, id string, t *domain.Trophy) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(t).Error
}

func deleteTrophiesOf(tx *gorm.DB, ownerID string) (int64, error) {
	ids := tx.Model(&domain.Trophy{}).Select("id").Where("user_id = ?", ownerID)
	if err := tx.Where("trophy_id IN (?)", ids).Delete(&domain.TrophyGeoIndex{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("user_id = ?", ownerID).Delete(&domain.Trophy{})
	return res.RowsAffected, res.Error
}

func syncIndex(tx *gorm.DB, t *domain.Trophy) error {
	if !t.IsPublic {
		return tx.Where("trophy_id = ?", t.ID).Delete(&domain.TrophyGeoIndex{}).Error
	}
	row := geoRow(t)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trophy_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func geoRow(t *domain.Trophy) domain.TrophyGeoIndex {
	c := geo.CellOf(geo.Point{Lat: t.Latitude, Lon: t.Longitude})
	return domain.TrophyGeoIndex{
		TrophyID:  t.ID,
		CellLat:   c.Lat,
		CellLon:   c.Lon,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
	}
}

func prepare(t *domain.Trophy) {
	t.SpatialKey = geo.CellOf(geo.Point{Lat: t.Latitude, Lon: t.Longitude}).Key()
	t.CaughtAt = normalize(t.CaughtAt)
}

// normalize keeps times in UTC at microsecond precision, which is what
// PostgreSQL stores.
func normalize(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Microsecond)
}
