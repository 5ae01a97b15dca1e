// Command cacheinspect prints the keys held in the badger response cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/gamedash/gamedash-server/internal/logger"
	"github.com/gamedash/gamedash-server/internal/store"
)

func main() {
	dataPath := flag.String("data-path", os.Getenv("DATA_PATH"), "Server data directory")
	prefix := flag.String("prefix", "", "Only list keys starting with this prefix, e.g. rawg:games")
	limit := flag.Int("limit", 50, "Maximum keys to print (0 for all)")
	flag.Parse()

	if *dataPath == "" {
		*dataPath = os.ExpandEnv("$HOME/GameDash/data")
	}
	dbPath := filepath.Join(*dataPath, "kv")

	db, err := store.Open(dbPath, logger.Discard().Logger, store.Options{ReadOnly: true})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Cache Inspection ===")
	fmt.Println("Path:", dbPath)
	fmt.Println()

	var (
		count      int
		totalBytes int64
		byNS       = make(map[string]int)
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSIZE\tEXPIRES IN")

	now := time.Now()
	for entry, err := range db.Entries(context.Background(), *prefix) {
		if err != nil {
			log.Fatalf("Error iterating cache: %v", err)
		}
		count++
		totalBytes += entry.Size
		byNS[namespace(entry.Key)]++

		if *limit > 0 && count > *limit {
			continue
		}
		expires := "never"
		if !entry.ExpiresAt.IsZero() {
			expires = entry.ExpiresAt.Sub(now).Truncate(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", entry.Key, entry.Size, expires)
	}
	_ = w.Flush()

	if *limit > 0 && count > *limit {
		fmt.Printf("... and %d more keys\n", count-*limit)
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Printf("Total keys: %d\n", count)
	fmt.Printf("Total value bytes: %d\n", totalBytes)

	names := make([]string, 0, len(byNS))
	for ns := range byNS {
		names = append(names, ns)
	}
	sort.Strings(names)
	for _, ns := range names {
		fmt.Printf("  %s: %d\n", ns, byNS[ns])
	}
}

// namespace strips the hashed suffix from a cache key.
func namespace(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
