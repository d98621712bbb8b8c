package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"trophyangler/internal/config"
	"trophyangler/internal/database"
	"trophyangler/internal/domain"
	jwtsvc "trophyangler/internal/pkg/jwt"
	"trophyangler/internal/repository"
)

type spot struct {
	name     string
	lat, lon float64
}

var spots = []spot{
	{"Lake Hopatcong", 40.957, -74.633},
	{"Round Valley Reservoir", 40.613, -74.839},
	{"Delaware Water Gap", 41.003, -75.118},
	{"Lake Okeechobee", 26.946, -80.826},
	{"Lake Taupo", -38.786, 176.069},
}

var species = []string{"largemouth bass", "smallmouth bass", "northern pike", "brown trout", "walleye", "rainbow trout"}

var baits = []string{"spinnerbait", "soft plastic worm", "crankbait", "live minnow", "dry fly"}

func main() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DB.URL, nil, database.Options{})
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	defer func() { _ = database.Close(db) }()

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migrate failed:", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	trophies := repository.NewTrophyRepository(db)
	jwt := jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.DevTokenTTL,
		jwtsvc.WithIssuer(cfg.Auth.JWTIssuer), jwtsvc.WithAudience(cfg.Auth.JWTAudience))

	log.Println("Cleaning old demo data...")
	for _, id := range []string{"demo-anna", "demo-ben", "demo-chen"} {
		if _, err := users.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Fatal("cleanup failed:", err)
		}
	}

	log.Println("Creating users...")
	demo := []domain.User{
		{ID: "demo-anna", Email: "anna@trophy.test", Username: "anna", IsPremium: true},
		{ID: "demo-ben", Email: "ben@trophy.test", Username: "ben"},
		{ID: "demo-chen", Email: "chen@trophy.test", Username: "chen"},
	}
	for i := range demo {
		if _, err := users.Upsert(ctx, &demo[i]); err != nil {
			log.Fatal("user upsert failed:", err)
		}
	}

	log.Println("Creating trophies...")
	total := 0
	for _, u := range demo {
		for i := 0; i < 6; i++ {
			s := spots[rng.Intn(len(spots))]
			bait := baits[rng.Intn(len(baits))]
			weight := 0.5 + rng.Float64()*4
			t := &domain.Trophy{
				OwnerID:      u.ID,
				Species:      species[rng.Intn(len(species))],
				Length:       float64(25 + rng.Intn(60)),
				Width:        float64(8 + rng.Intn(20)),
				Weight:       &weight,
				PhotoURL:     "https://picsum.photos/seed/" + u.Username + "/800/600",
				LocationName: s.name,
				Latitude:     s.lat + (rng.Float64()-0.5)*0.05,
				Longitude:    s.lon + (rng.Float64()-0.5)*0.05,
				Bait:         &bait,
				CaughtAt:     time.Now().UTC().Add(-time.Duration(rng.Intn(90*24)) * time.Hour),
				IsPublic:     i%3 != 0,
			}
			if err := trophies.Put(ctx, t); err != nil {
				log.Fatal("trophy put failed:", err)
			}
			total++
		}
	}

	log.Printf("Seed completed! users=%d trophies=%d", len(demo), total)
	log.Println("Dev tokens:")
	for _, u := range demo {
		tok, err := jwt.GenerateToken(u.ID)
		if err != nil {
			log.Fatal("token failed:", err)
		}
		log.Printf("  %s: %s", u.Username, tok)
	}
}
