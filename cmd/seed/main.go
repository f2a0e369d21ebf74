package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"go.uber.org/zap"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/platform/logger"
)

func main() {
	count := flag.Int("count", 100, "number of books to insert")
	seed := flag.Uint64("seed", 1, "random seed, so runs are reproducible")
	flag.Parse()

	log, err := logger.New(logger.Options{Format: "console", Service: "seed"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), log, *count, *seed); err != nil {
		log.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger, count int, seed uint64) error {
	driver, dsn, err := config.MigrationsOnly()
	if err != nil {
		return err
	}

	var repo book.Repository
	switch driver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, log, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo = book.NewPostgresRepo(pool, 5*time.Second)
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, log, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = book.NewSQLiteRepo(db, 5*time.Second)
	}

	svc := book.NewService(repo)
	rng := rand.New(rand.NewPCG(seed, seed))

	log.Info("inserting books", zap.Int("count", count), zap.String("driver", driver))
	for i, in := range generate(rng, count) {
		if _, err := svc.Create(ctx, in); err != nil {
			return fmt.Errorf("insert book %d: %w", i+1, err)
		}
		if (i+1)%100 == 0 {
			log.Info("progress", zap.Int("inserted", i+1))
		}
	}

	page, err := svc.List(ctx, book.Query{SortBy: book.SortByTitle, Order: book.OrderAsc, Limit: 1})
	if err != nil {
		return err
	}
	log.Info("seed complete", zap.Int("total_books", page.Total))
	return nil
}

var (
	authors = []string{
		"Ursula K. Le Guin", "Octavia E. Butler", "Italo Calvino", "Chinua Achebe",
		"Jane Austen", "Haruki Murakami", "Toni Morrison", "Jorge Luis Borges",
	}
	words = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Peace", "Science", "Nature", "History", "Future", "Light", "Darkness",
		"World", "Time", "Space", "Mind", "Soul", "River",
	}
)

func generate(rng *rand.Rand, count int) []book.Input {
	out := make([]book.Input, 0, count)
	for i := range count {
		out = append(out, book.Input{
			Title:  fmt.Sprintf("The %s of %s %d", words[rng.IntN(len(words))], words[rng.IntN(len(words))], i+1),
			Author: authors[rng.IntN(len(authors))],
			Year:   1900 + rng.IntN(125),
		})
	}
	return out
}
