// Terminal client for the collaborative tier list: mirrors the board,
// prints remote edits as they happen, and accepts simple edit commands
// on stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sydnec/MyAnimeTierList/internal/client"
	"github.com/Sydnec/MyAnimeTierList/pkg/models"
)

func main() {
	addr := flag.String("addr", "ws://127.0.0.1:8080/ws", "server websocket URL")
	snapshot := flag.String("snapshot", client.DefaultStorage().Path, "local state snapshot path")
	watch := flag.Bool("watch", false, "only watch events, no stdin commands")
	flag.Parse()

	storage := &client.Storage{Path: *snapshot}

	for {
		if err := run(*addr, storage, *watch); err != nil {
			log.Printf("[client] disconnected: %v", err)
		}
		if *watch {
			time.Sleep(1 * time.Second) // auto reconnect
			continue
		}
		return
	}
}

func run(addr string, storage *client.Storage, watch bool) error {
	session := client.NewSession(addr, storage)
	session.SetListeners(client.Listeners{
		OnFullSync: func(state models.CollaborativeState) {
			fmt.Printf("<< full state: %d animes, %d tiers, %d users\n",
				len(state.Animes), len(state.Tiers), state.ConnectedUsers)
		},
		OnUsersCount: func(n int) { fmt.Printf("<< connected users: %d\n", n) },
		OnAnimeAdded: func(a models.Anime) { fmt.Printf("<< added: %s (%s)\n", a.Title, a.ID) },
		OnAnimeMoved: func(mv models.Move) {
			fmt.Printf("<< moved: %s -> %s @ %d\n", mv.AnimeID, mv.TierID, mv.Position)
		},
		OnTiersUpdated: func(tiers []models.Tier) { fmt.Printf("<< tiers replaced: %d\n", len(tiers)) },
		OnBulkImported: func(animes []models.Anime) { fmt.Printf("<< bulk import: %d animes\n", len(animes)) },
		OnAnimeDeleted: func(id string) { fmt.Printf("<< deleted: %s\n", id) },
		OnAnimeUpdated: func(a models.Anime) { fmt.Printf("<< updated: %s\n", a.Title) },
		OnError:        func(msg string) { fmt.Printf("<< server error: %s\n", msg) },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := session.Connect(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer session.Close()

	log.Printf("[client] connected to %s", addr)

	if watch {
		<-session.Done()
		return os.ErrClosed
	}

	go prompt(session)
	<-session.Done()
	return os.ErrClosed
}

func prompt(session *client.Session) {
	fmt.Println("commands: add <title> | move <id> <tier> [pos] | delete <id> | board | sync | quit")

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "add":
			if len(fields) < 2 {
				fmt.Println("usage: add <title>")
				continue
			}
			title := strings.Join(fields[1:], " ")
			if err := session.EmitAnimeAdd(models.Anime{Title: title}); err != nil {
				fmt.Printf("add failed: %v\n", err)
			}

		case "move":
			if len(fields) < 3 {
				fmt.Println("usage: move <id> <tier> [pos]")
				continue
			}
			pos := 0
			if len(fields) > 3 {
				pos, _ = strconv.Atoi(fields[3])
			}
			if err := session.EmitAnimeMove(fields[1], fields[2], pos); err != nil {
				fmt.Printf("move failed: %v\n", err)
			}

		case "delete":
			if len(fields) < 2 {
				fmt.Println("usage: delete <id>")
				continue
			}
			if err := session.EmitAnimeDelete(fields[1]); err != nil {
				fmt.Printf("delete failed: %v\n", err)
			}

		case "board":
			printBoard(session.State())

		case "sync":
			if err := session.RequestSync(); err != nil {
				fmt.Printf("sync failed: %v\n", err)
			}

		case "quit", "exit":
			_ = session.Close()
			return

		default:
			fmt.Printf("unknown command: %s\n", fields[0])
		}
	}
}

func printBoard(state models.CollaborativeState) {
	byID := make(map[string]models.Anime, len(state.Animes))
	for _, a := range state.Animes {
		byID[a.ID] = a
	}

	ranked := make(map[string]bool)
	for _, tier := range state.Tiers {
		fmt.Printf("%s (%s):\n", tier.Name, tier.ID)
		for _, id := range state.TierOrders[tier.ID] {
			a, ok := byID[id]
			if !ok {
				continue
			}
			ranked[id] = true
			fmt.Printf("  - %s\n", a.Title)
		}
		// assignments are authoritative; heal order lists missing members
		for id, assigned := range state.TierAssignments {
			if assigned != tier.ID || ranked[id] {
				continue
			}
			if a, ok := byID[id]; ok {
				ranked[id] = true
				fmt.Printf("  - %s\n", a.Title)
			}
		}
	}

	fmt.Println("unranked:")
	for _, a := range state.Animes {
		if _, ok := state.TierAssignments[a.ID]; !ok {
			fmt.Printf("  - %s (%s)\n", a.Title, a.ID)
		}
	}

	b, _ := json.Marshal(state.TierAssignments)
	fmt.Printf("assignments: %s\n", b)
}
