package trophy

import (
	"context"
	"math"
	"strings"
	"time"

	"trophyangler/internal/domain"
	"trophyangler/internal/geo"
	"trophyangler/internal/metrics"
	"trophyangler/internal/pkg/logctx"
	"trophyangler/internal/pkg/response"
	"trophyangler/internal/pkg/validator"
	"trophyangler/internal/visibility"
)

// maxCaughtAtSkew is how far in the future caught_at may lie.
const maxCaughtAtSkew = 24 * time.Hour

type Service struct {
	store   TrophyStore
	limits  Limits
	now     func() time.Time
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func NewService(store TrophyStore, limits Limits, opts ...Option) *Service {
	s := &Service{store: store, limits: limits, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, caller domain.Caller, in domain.CreateTrophyInput) (*domain.Trophy, error) {
	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}

	t := &domain.Trophy{
		OwnerID:      caller.ID,
		Species:      strings.TrimSpace(in.Species),
		Length:       in.Length,
		Width:        in.Width,
		Weight:       in.Weight,
		PhotoURL:     strings.TrimSpace(in.PhotoURL),
		LocationName: strings.TrimSpace(in.LocationName),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Bait:         in.Bait,
		WaterTemp:    in.WaterTemp,
		Notes:        in.Notes,
		CaughtAt:     in.CaughtAt,
		IsPublic:     in.IsPublic,
	}
	if err := s.validate(t); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, t); err != nil {
		return nil, err
	}

	s.countWrite("create")
	logctx.From(ctx).Info("trophy created", "trophy_id", t.ID, "user_id", t.OwnerID, "public", t.IsPublic)
	return t, nil
}

// Get returns the trophy if the caller may read it.
func (s *Service) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Trophy, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.CanRead(caller, t) {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

// Update applies patch on behalf of the owner. Ownership, patching and
// validation all run on the locked row, so a rejected update writes nothing.
func (s *Service) Update(ctx context.Context, caller domain.Caller, id string, patch domain.TrophyPatch) (*domain.Trophy, error) {
	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	if fields := patch.Check(); fields != nil {
		return nil, domain.NewValidationError(fields)
	}

	t, err := s.store.Mutate(ctx, id, func(cur *domain.Trophy) error {
		if !visibility.CanWrite(caller, cur) {
			return domain.ErrForbidden
		}
		patch.Apply(cur)
		cur.Species = strings.TrimSpace(cur.Species)
		cur.PhotoURL = strings.TrimSpace(cur.PhotoURL)
		cur.LocationName = strings.TrimSpace(cur.LocationName)
		return s.validate(cur)
	})
	if err != nil {
		return nil, err
	}

	s.countWrite("update")
	logctx.From(ctx).Info("trophy updated", "trophy_id", t.ID, "public", t.IsPublic)
	return t, nil
}

func (s *Service) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if caller.Anonymous() {
		return domain.ErrUnauthorized
	}

	err := s.store.Delete(ctx, id, func(cur *domain.Trophy) error {
		if !visibility.CanWrite(caller, cur) {
			return domain.ErrForbidden
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.countWrite("delete")
	logctx.From(ctx).Info("trophy deleted", "trophy_id", id)
	return nil
}

// ListOwn returns every trophy of the caller, private ones included.
func (s *Service) ListOwn(ctx context.Context, caller domain.Caller) ([]domain.Trophy, error) {
	if caller.Anonymous() {
		return nil, domain.ErrUnauthorized
	}
	items, err := s.store.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// ListPublic pages through all public trophies, newest catch first.
func (s *Service) ListPublic(ctx context.Context, limit, offset int) (*response.Page[domain.Trophy], error) {
	limit, err := resolveLimit(limit, s.limits.ListDefault, s.limits.ListMax)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, &domain.QueryError{Param: "offset", Reason: "must be >= 0"}
	}

	items, total, err := s.store.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &response.Page[domain.Trophy]{Items: nonNil(items), Total: total, Limit: limit, Offset: offset}, nil
}

// ListByUser returns a user's trophies as the caller may see them: the
// owner gets everything, anyone else only the public ones.
func (s *Service) ListByUser(ctx context.Context, caller domain.Caller, userID string, limit int) ([]domain.Trophy, error) {
	limit, err := resolveLimit(limit, s.limits.SearchDefault, s.limits.SearchMax)
	if err != nil {
		return nil, err
	}

	if !caller.Anonymous() && caller.ID == userID {
		items, err := s.store.ListByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(items) > limit {
			items = items[:limit]
		}
		return nonNil(items), nil
	}
	items, err := s.store.ListPublicByOwner(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// SearchNearby finds public trophies within the radius. Only public records
// are indexed, so the caller does not influence the result.
func (s *Service) SearchNearby(ctx context.Context, _ domain.Caller, q NearbyQuery) ([]domain.Trophy, error) {
	center := geo.Point{Lat: q.Lat, Lon: q.Lon}
	switch {
	case math.IsNaN(q.Lat) || math.IsInf(q.Lat, 0) || q.Lat < -90 || q.Lat > 90:
		return nil, &domain.QueryError{Param: "lat", Reason: "must be within [-90, 90]"}
	case math.IsNaN(q.Lon) || math.IsInf(q.Lon, 0) || q.Lon < -180 || q.Lon > 180:
		return nil, &domain.QueryError{Param: "lon", Reason: "must be within [-180, 180]"}
	case math.IsNaN(q.RadiusKm) || q.RadiusKm <= 0:
		return nil, &domain.QueryError{Param: "radius_km", Reason: "must be > 0"}
	case q.RadiusKm > geo.MaxRadiusKm:
		return nil, &domain.QueryError{Param: "radius_km", Reason: "must be <= 20000"}
	}

	limit, err := resolveLimit(q.Limit, s.limits.SearchDefault, s.limits.SearchMax)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	items, err := s.store.SearchNearby(ctx, center, q.RadiusKm, limit)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.NearbyDuration.Observe(time.Since(start).Seconds())
		s.metrics.NearbyResults.Observe(float64(len(items)))
	}
	return nonNil(items), nil
}

func (s *Service) validate(t *domain.Trophy) error {
	fields := validator.Validate(t)
	if fields == nil {
		fields = map[string]string{}
	}

	if t.Species == "" {
		fields["species"] = "required"
	}
	for name, v := range map[string]float64{"length": t.Length, "width": t.Width} {
		if math.IsInf(v, 0) {
			fields[name] = "finite"
		}
	}
	if t.Weight != nil {
		switch {
		case math.IsInf(*t.Weight, 0) || math.IsNaN(*t.Weight):
			fields["weight"] = "finite"
		case *t.Weight <= 0:
			fields["weight"] = "gt"
		}
	}
	if t.WaterTemp != nil && (math.IsInf(*t.WaterTemp, 0) || math.IsNaN(*t.WaterTemp)) {
		fields["water_temp"] = "finite"
	}
	switch {
	case t.CaughtAt.IsZero():
		fields["caught_at"] = "required"
	case t.CaughtAt.After(s.now().Add(maxCaughtAtSkew)):
		fields["caught_at"] = "future"
	}

	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}
	return nil
}

func (s *Service) countWrite(op string) {
	if s.metrics != nil {
		s.metrics.TrophyWrites.WithLabelValues(op).Inc()
	}
}

// resolveLimit applies the default to 0 and clamps anything above max.
func resolveLimit(limit, def, max int) (int, error) {
	switch {
	case limit < 0:
		return 0, &domain.QueryError{Param: "limit", Reason: "must be >= 0"}
	case limit == 0:
		return def, nil
	case limit > max:
		return max, nil
	}
	return limit, nil
}

func nonNil(items []domain.Trophy) []domain.Trophy {
	if items == nil {
		return []domain.Trophy{}
	}
	return items
}
