package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sydnec/MyAnimeTierList/internal/collab"
	"github.com/Sydnec/MyAnimeTierList/internal/metadata/jikan"
	"github.com/Sydnec/MyAnimeTierList/internal/store"
	"github.com/Sydnec/MyAnimeTierList/pkg/database"
)

func defaultDBPath() string {
	return database.DefaultConfig().Path
}

func serve(ctx context.Context, cfg *config) error {
	if !cfg.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	dbCfg := database.Config{Path: cfg.dbPath}
	db, err := database.Open(dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	st := store.New(db)
	hub := collab.NewHub()
	srv := collab.NewServer(st, hub)

	if err := srv.LoadState(ctx); err != nil {
		return err
	}

	catalog := jikan.NewClient()

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", collab.WSHandler(srv, hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.dbPath})
	})

	router.GET("/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
				"clients":  hub.Count(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"db":      "ok",
			"clients": hub.Count(),
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		snap := srv.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"db":      cfg.dbPath,
			"clients": hub.Count(),
			"animes":  len(snap.Animes),
			"tiers":   len(snap.Tiers),
		})
	})

	// read-only snapshot of the authoritative state
	router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, srv.Snapshot())
	})

	// catalog search proxy so browser clients never hit Jikan directly
	router.GET("/search", func(c *gin.Context) {
		q := c.Query("q")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		c.JSON(http.StatusOK, gin.H{
			"items": catalog.Search(c.Request.Context(), q, limit),
		})
	})

	httpSrv := &http.Server{
		Addr:    net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("tier list server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Printf("context cancelled")
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Println("server stopped")
	return nil
}
