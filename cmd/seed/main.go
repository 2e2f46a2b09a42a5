// Package main provides a tool to seed the database with sample reading data.
//
// It creates a handful of books with completed sessions spread over the
// past weeks, which is enough to exercise stats, streaks, and pace
// forecasts during development.
//
// Usage:
//
//	DB_PATH=~/pageturn/db go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/id"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

var days = flag.Int("days", 21, "How many days of history to generate")

var sampleBooks = []struct {
	title  string
	author string
	genre  string
	pages  int
}{
	{"The Dispossessed", "Ursula K. Le Guin", "Science Fiction", 387},
	{"Piranesi", "Susanna Clarke", "Fantasy", 245},
	{"The Remains of the Day", "Kazuo Ishiguro", "Literary Fiction", 258},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "Nonfiction", 499},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/pageturn/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	books := make([]*domain.Book, 0, len(sampleBooks))
	for _, sample := range sampleBooks {
		book := &domain.Book{
			Title:      sample.title,
			Author:     sample.author,
			Genre:      sample.genre,
			Format:     domain.FormatPaper,
			Status:     domain.StatusReading,
			TotalPages: sample.pages,
		}
		book.ID = id.MustGenerate(id.PrefixBook)
		book.InitTimestamps()

		if err := s.CreateBook(ctx, book); err != nil {
			log.Fatalf("Failed to create book %q: %v", sample.title, err)
		}
		books = append(books, book)
		fmt.Printf("Created book: %s (%s)\n", book.Title, book.ID)
	}

	now := time.Now()
	sessionCount := 0

	for daysAgo := *days; daysAgo >= 1; daysAgo-- {
		// Skip the occasional day so streaks have gaps to find.
		if rng.Intn(6) == 0 {
			continue
		}

		book := books[rng.Intn(len(books))]
		pages := 10 + rng.Intn(40)
		minutes := 20 + rng.Intn(70)

		startedAt := now.AddDate(0, 0, -daysAgo).Add(time.Duration(rng.Intn(12)+8) * time.Hour)
		endedAt := startedAt.Add(time.Duration(minutes) * time.Minute)
		endPage := book.CurrentPage + pages

		session := &domain.ReadingSession{
			BookID:          book.ID,
			State:           domain.SessionCompleted,
			Type:            domain.SessionTimed,
			StartedAt:       startedAt,
			EndedAt:         &endedAt,
			StartPage:       book.CurrentPage,
			EndPage:         &endPage,
			PagesRead:       pages,
			DurationMinutes: &minutes,
		}
		session.ID = id.MustGenerate(id.PrefixSession)
		session.CreatedAt = startedAt
		session.UpdatedAt = endedAt

		if err := s.CreateSession(ctx, session); err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		if err := s.RecordSessionRollup(ctx, session, endedAt); err != nil {
			log.Fatalf("Failed to record rollup: %v", err)
		}

		book.ApplyPage(endPage, endedAt)
		if err := s.UpdateBook(ctx, book); err != nil {
			log.Fatalf("Failed to update book: %v", err)
		}

		sessionCount++
	}

	fmt.Printf("\nSeeded %d sessions across %d books over %d days\n",
		sessionCount, len(books), *days)
	fmt.Println("Hit GET /api/v1/stats to see the result.")
}
