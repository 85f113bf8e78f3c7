// Command cachedump prints the contents of the query cache for debugging.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/notivo/notivo-server/internal/cache"
)

func main() {
	cachePath := os.Getenv("CACHE_PATH")
	if cachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		cachePath = filepath.Join(home, "Notivo", "data", "cache")
	}

	opts := badger.DefaultOptions(cachePath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Cache Inspection ===")
	fmt.Println()

	searchEntries := 0
	contactEntries := 0

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(val []byte) error {
				switch {
				case strings.HasPrefix(key, "search:"):
					searchEntries++
					var doc cache.SearchDocument
					if err := json.Unmarshal(val, &doc); err != nil {
						return err
					}
					fmt.Printf("Search: %s\n", key)
					fmt.Printf("  User: %s\n", doc.UserID)
					fmt.Printf("  Filter: %q\n", doc.FilterKey)
					fmt.Printf("  Results: %d\n", len(doc.Results))
					fmt.Printf("  Last updated: %s\n", doc.LastUpdated)
					fmt.Println()

				case key == "tags:global":
					var doc cache.TagsDocument
					if err := json.Unmarshal(val, &doc); err != nil {
						return err
					}
					fmt.Printf("Tag catalog: %d tags, last updated %s\n", len(doc.Tags), doc.LastUpdated)
					for _, tag := range doc.Tags {
						fmt.Printf("  %s  %s\n", tag.ID, tag.Name)
					}
					fmt.Println()

				case strings.HasPrefix(key, "contacts:"):
					contactEntries++
					var doc cache.ContactsDocument
					if err := json.Unmarshal(val, &doc); err != nil {
						return err
					}
					fmt.Printf("Contacts: %s (%d contacts)\n", doc.UserID, len(doc.Contacts))
					for _, contact := range doc.Contacts {
						fmt.Printf("  %s  %s\n", contact.ID, contact.Username)
					}
					fmt.Println()
				}
				return nil
			})
			if err != nil {
				log.Printf("Error reading %s: %v", key, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan cache: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Search documents:  %d\n", searchEntries)
	fmt.Printf("Contact documents: %d\n", contactEntries)
}
