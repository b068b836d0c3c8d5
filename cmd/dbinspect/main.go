// Package main provides a read-only inspection tool for the Markhaven database.
//
// Usage:
//
//	DATA_PATH=~/markhaven go run ./cmd/dbinspect
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/markhaven")
	}
	dbPath := filepath.Join(dataPath, "markhaven.db")

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	tables := []string{"users", "sessions", "bookmarks", "tags", "collections", "bookmark_tags", "bookmark_collections"}
	for _, table := range tables {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		fmt.Printf("%-22s %d\n", table, count)
	}

	fmt.Println()
	fmt.Println("=== Per-User Breakdown ===")
	fmt.Println()

	rows, err := db.Query(`
		SELECT u.email,
		       (SELECT COUNT(*) FROM bookmarks b WHERE b.owner_id = u.id),
		       (SELECT COUNT(*) FROM tags t WHERE t.owner_id = u.id),
		       (SELECT COUNT(*) FROM collections c WHERE c.owner_id = u.id)
		FROM users u
		ORDER BY u.created_at`)
	if err != nil {
		log.Fatalf("Failed to query users: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		var bookmarks, tags, collections int
		if err := rows.Scan(&email, &bookmarks, &tags, &collections); err != nil {
			log.Fatalf("Failed to scan row: %v", err)
		}
		fmt.Printf("%s\n", email)
		fmt.Printf("  Bookmarks:   %d\n", bookmarks)
		fmt.Printf("  Tags:        %d\n", tags)
		fmt.Printf("  Collections: %d\n", collections)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Row iteration failed: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Recent Bookmarks ===")
	fmt.Println()

	recent, err := db.Query(`
		SELECT id, url, title, created_at
		FROM bookmarks
		ORDER BY created_at DESC, id DESC
		LIMIT 10`)
	if err != nil {
		log.Fatalf("Failed to query bookmarks: %v", err)
	}
	defer recent.Close()

	for recent.Next() {
		var id, url, title, createdAt string
		if err := recent.Scan(&id, &url, &title, &createdAt); err != nil {
			log.Fatalf("Failed to scan bookmark: %v", err)
		}
		fmt.Printf("%s  %s\n", createdAt, title)
		fmt.Printf("  %s (%s)\n", url, id)
	}
	if err := recent.Err(); err != nil {
		log.Fatalf("Row iteration failed: %v", err)
	}
}
