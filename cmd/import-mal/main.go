// Imports animes from the MyAnimeList catalog into the shared board:
// searches Jikan for each term, optionally collapses seasons into one
// entity per series, and sends the batch as a bulk-import.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Sydnec/MyAnimeTierList/internal/client"
	"github.com/Sydnec/MyAnimeTierList/internal/collection"
	"github.com/Sydnec/MyAnimeTierList/internal/metadata/jikan"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

func main() {
	addr := flag.String("addr", "ws://127.0.0.1:8080/ws", "server websocket URL")
	limit := flag.Int("limit", 10, "results per search term")
	collapse := flag.Bool("collapse-seasons", true, "merge seasons of one series into a single entry")
	flag.Parse()

	terms := flag.Args()
	if len(terms) == 0 {
		log.Fatal("usage: import-mal [flags] <search term>...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	catalog := jikan.NewClient()

	var found []models.Anime
	for _, term := range terms {
		results := catalog.Search(ctx, term, *limit)
		log.Printf("[import] %q: %d results", term, len(results))
		found = append(found, results...)
	}
	if len(found) == 0 {
		log.Fatal("no catalog results, nothing to import")
	}

	batch := found
	if *collapse {
		coll := collection.New()
		for _, a := range found {
			coll.Add(a)
		}
		batch = coll.All()
		log.Printf("[import] collapsed %d results into %d series", len(found), len(batch))
	}

	// snapshot-less session: the importer never needs an offline mirror
	session := client.NewSession(*addr, nil)

	imported := make(chan int, 1)
	session.SetListeners(client.Listeners{
		OnBulkImported: func(animes []models.Anime) {
			imported <- len(animes)
		},
	})

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	err := session.Connect(dialCtx)
	dialCancel()
	if err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer session.Close()

	if err := session.EmitBulkImport(batch); err != nil {
		log.Fatalf("bulk import failed: %v", err)
	}

	select {
	case n := <-imported:
		log.Printf("[import] server accepted %d new animes (of %d sent)", n, len(batch))
	case <-time.After(30 * time.Second):
		log.Printf("[import] sent %d animes (no confirmation, likely all duplicates)", len(batch))
	case <-session.Done():
		log.Printf("[import] connection closed before confirmation")
	}
}
