package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/pageturn/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	byStatus := map[domain.BookStatus]int{}
	bookCount := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Skip index keys
			if strings.HasPrefix(key, "book:idx:") {
				continue
			}

			err := item.Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				byStatus[book.Status]++

				if bookCount <= 5 {
					fmt.Printf("Book: %s\n", book.Title)
					fmt.Printf("  ID: %s\n", book.ID)
					fmt.Printf("  Status: %s\n", book.Status)
					if book.TotalPages > 0 {
						fmt.Printf("  Progress: %d/%d pages (%.0f%%)\n",
							book.CurrentPage, book.TotalPages, book.Progress*100)
					}
					fmt.Println()
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading book %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	sessionCount := 0
	openSessions := 0
	totalPages := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("session:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("session:")); it.ValidForPrefix([]byte("session:")); it.Next() {
			item := it.Item()
			if strings.HasPrefix(string(item.Key()), "session:idx:") {
				continue
			}

			err := item.Value(func(val []byte) error {
				var session domain.ReadingSession
				if err := json.Unmarshal(val, &session); err != nil {
					return err
				}

				sessionCount++
				totalPages += session.PagesRead
				if session.IsOpen() {
					openSessions++
					fmt.Printf("Open session: %s (book %s, state %s)\n",
						session.ID, session.BookID, session.State)
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading session: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", bookCount)
	for status, count := range byStatus {
		fmt.Printf("  %s: %d\n", status, count)
	}
	fmt.Printf("Total sessions: %d (%d open)\n", sessionCount, openSessions)
	fmt.Printf("Total pages recorded: %d\n", totalPages)
	if sessionCount > 0 {
		fmt.Printf("Average pages per session: %.1f\n", float64(totalPages)/float64(sessionCount))
	}
}
