// seed inserts a development film catalog and a demo account for local
// testing. Idempotent: skips entirely when the catalog is non-empty.
package main

import (
	"context"
	"log"
	"time"

	"cinereserve/backend/internal/config"
	"cinereserve/backend/internal/db"
	filmdomain "cinereserve/backend/internal/film/domain"
	filmrepo "cinereserve/backend/internal/film/repository"
	"cinereserve/backend/internal/security"
	"cinereserve/backend/internal/storage/jsonfile"
	userdomain "cinereserve/backend/internal/user/domain"
	userrepo "cinereserve/backend/internal/user/repository"
)

const (
	demoUsername = "demo"
	demoPassword = "demo-password-123"
)

var catalog = []filmdomain.Film{
	{Title: "Le Fabuleux Destin d'Amélie Poulain", Genre: "comedy", Showtime: "18:00", AvailableSeats: 60},
	{Title: "Dune: Part Two", Genre: "sci-fi", Showtime: "20:00", AvailableSeats: 80},
	{Title: "Portrait de la jeune fille en feu", Genre: "drama", Showtime: "21:30", AvailableSeats: 45},
	{Title: "Les Intouchables", Genre: "comedy", Showtime: "19:15", AvailableSeats: 70},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var films filmrepo.Repository
	var users userrepo.Repository
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer sqlDB.Close()
		films = filmrepo.NewPostgresRepository(sqlDB)
		users = userrepo.NewPostgresRepository(sqlDB)
	} else {
		store, err := jsonfile.NewStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("open data dir: %v", err)
		}
		films = filmrepo.NewJSONFileRepository(store)
		users = userrepo.NewJSONFileRepository(store)
	}

	ctx := context.Background()
	existing, err := films.List(ctx)
	if err != nil {
		log.Fatalf("list films: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("catalog already has %d films; nothing to do", len(existing))
		return
	}

	for i := range catalog {
		created, err := films.Create(ctx, &catalog[i])
		if err != nil {
			log.Fatalf("create film %q: %v", catalog[i].Title, err)
		}
		log.Printf("created film %d: %s", created.ID, created.Title)
	}

	if u, err := users.GetByUsername(ctx, demoUsername); err != nil {
		log.Fatalf("lookup demo user: %v", err)
	} else if u == nil {
		hasher := security.NewHasher(cfg.ScryptN, cfg.HashConcurrency)
		hash, salt, err := hasher.Hash(demoPassword)
		if err != nil {
			log.Fatalf("hash demo password: %v", err)
		}
		created, err := users.Create(ctx, &userdomain.User{
			Username:     demoUsername,
			Name:         "Demo User",
			PasswordHash: hash,
			PasswordSalt: salt,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			log.Fatalf("create demo user: %v", err)
		}
		log.Printf("created demo user %d (%s / %s)", created.ID, demoUsername, demoPassword)
	}
}
