// Package main provides a tool to seed the database with demo bookmark data.
//
// This creates demo users with collections, tags, and bookmarks to exercise
// list filtering, pagination, and the cascade behavior during development.
//
// Usage:
//
//	DATA_PATH=~/markhaven go run ./cmd/seed
//	DATA_PATH=~/markhaven go run ./cmd/seed --users=3
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/markhavenapp/markhaven-server/internal/auth"
	"github.com/markhavenapp/markhaven-server/internal/domain"
	"github.com/markhavenapp/markhaven-server/internal/id"
	"github.com/markhavenapp/markhaven-server/internal/store/sqlite"
)

var userCount = flag.Int("users", 2, "Number of demo users to create")

// demoUserNames are display names for generated demo users.
var demoUserNames = []string{
	"Alex Rivera",
	"Jordan Chen",
	"Sam Taylor",
	"Casey Morgan",
	"Riley Kim",
}

// demoSites are URL/title pairs used to generate bookmarks.
var demoSites = []struct {
	url   string
	title string
}{
	{"https://go.dev/blog/error-handling", "Error handling and Go"},
	{"https://go.dev/doc/effective_go", "Effective Go"},
	{"https://sqlite.org/wal.html", "Write-Ahead Logging"},
	{"https://developer.mozilla.org/en-US/docs/Web/HTTP/Caching", "HTTP caching"},
	{"https://www.joelonsoftware.com/2000/04/06/things-you-should-never-do-part-i/", "Things You Should Never Do, Part I"},
	{"https://danluu.com/deconstruct-files/", "Files are hard"},
	{"https://jvns.ca/blog/2022/02/01/a-couple-of-rust-error-messages/", "Some Rust error messages"},
	{"https://research.swtch.com/vgo-intro", "Go += Package Versioning"},
	{"https://blog.cloudflare.com/how-we-built-pingora/", "How we built Pingora"},
	{"https://brandur.org/idempotency-keys", "Implementing Stripe-like Idempotency Keys"},
	{"https://fly.io/blog/carving-the-scheduler-out-of-our-orchestrator/", "Carving the scheduler out of our orchestrator"},
	{"https://martinfowler.com/articles/patterns-of-distributed-systems/", "Patterns of Distributed Systems"},
}

// demoCollectionNames are created per user in addition to the system collection.
var demoCollectionNames = []string{"Reading List", "Engineering", "Recipes"}

// demoTagNames supplement the default tags seeded at registration.
var demoTagNames = []string{"go", "databases", "essays", "infra"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/markhaven")
	}
	dbPath := filepath.Join(dataPath, "markhaven.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := createDemoUsers(ctx, s)
	if len(users) == 0 {
		log.Fatal("No demo users available, nothing to seed")
	}

	for _, user := range users {
		fmt.Printf("\nSeeding data for user: %s (%s)\n", user.Name(), user.ID)
		seedUser(ctx, s, rng, user)
	}

	fmt.Println("\nSeeding complete!")
}

// createDemoUsers creates up to --users demo accounts, skipping ones that
// already exist. Each account gets the same registration seeding the server
// performs: a system collection plus the default tags.
func createDemoUsers(ctx context.Context, s *sqlite.Store) []*domain.User {
	passwordHash, err := auth.HashPassword("demopass123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	count := *userCount
	if count > len(demoUserNames) {
		count = len(demoUserNames)
	}

	now := time.Now().UTC()
	var users []*domain.User

	for i := 0; i < count; i++ {
		email := fmt.Sprintf("demo%d@example.com", i+1)

		if existing, err := s.GetUserByEmail(ctx, email); err == nil {
			fmt.Printf("  User %s already exists, reusing\n", email)
			users = append(users, existing)
			continue
		}

		user := &domain.User{
			ID:           id.MustGenerate("usr"),
			Email:        email,
			PasswordHash: passwordHash,
			DisplayName:  demoUserNames[i],
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		system := &domain.Collection{
			ID:        id.MustGenerate("col"),
			OwnerID:   user.ID,
			Name:      domain.SystemCollectionName,
			IsSystem:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		var defaults []*domain.Tag
		for _, name := range domain.DefaultTagNames {
			defaults = append(defaults, &domain.Tag{
				ID:        id.MustGenerate("tag"),
				OwnerID:   user.ID,
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		if err := s.CreateUser(ctx, user, system, defaults); err != nil {
			log.Printf("  Failed to create user %s: %v", email, err)
			continue
		}

		fmt.Printf("  Created user: %s (%s)\n", user.DisplayName, email)
		users = append(users, user)
	}

	return users
}

// seedUser creates collections, tags, and bookmarks for one user.
func seedUser(ctx context.Context, s *sqlite.Store, rng *rand.Rand, user *domain.User) {
	now := time.Now().UTC()

	var collections []*domain.Collection
	for _, name := range demoCollectionNames {
		coll := &domain.Collection{
			ID:        id.MustGenerate("col"),
			OwnerID:   user.ID,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateCollection(ctx, coll); err != nil {
			// Already present from a previous run
			continue
		}
		collections = append(collections, coll)
	}
	fmt.Printf("  Created %d collections\n", len(collections))

	var tags []*domain.Tag
	for _, name := range demoTagNames {
		tag, _, err := s.FindOrCreateTag(ctx, user.ID, name)
		if err != nil {
			log.Printf("  Failed to create tag %s: %v", name, err)
			continue
		}
		tags = append(tags, tag)
	}
	fmt.Printf("  Have %d tags\n", len(tags))

	// Pick a random subset of the demo sites for this user, spread over the
	// past two weeks so list ordering has something to show.
	shuffled := rng.Perm(len(demoSites))
	numBookmarks := min(6+rng.Intn(5), len(demoSites))
	created := 0

	for _, idx := range shuffled[:numBookmarks] {
		site := demoSites[idx]
		createdAt := now.AddDate(0, 0, -rng.Intn(14)).Add(-time.Duration(rng.Intn(86400)) * time.Second)

		bm := &domain.Bookmark{
			ID:        id.MustGenerate("bm"),
			OwnerID:   user.ID,
			URL:       site.url,
			Title:     site.title,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}

		var tagIDs []string
		if len(tags) > 0 {
			tagIDs = append(tagIDs, tags[rng.Intn(len(tags))].ID)
		}
		var collectionIDs []string
		if len(collections) > 0 && rng.Float32() < 0.7 {
			collectionIDs = append(collectionIDs, collections[rng.Intn(len(collections))].ID)
		}

		if err := s.CreateBookmark(ctx, bm, tagIDs, collectionIDs); err != nil {
			// Duplicate URL from a previous run
			continue
		}
		created++
	}

	fmt.Printf("  Created %d bookmarks\n", created)
}
