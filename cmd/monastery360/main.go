// File path: cmd/monastery360/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sacred-sikkim/monastery360/internal/api"
	"github.com/sacred-sikkim/monastery360/internal/chat"
	"github.com/sacred-sikkim/monastery360/internal/common"
	"github.com/sacred-sikkim/monastery360/internal/llm"
	"github.com/sacred-sikkim/monastery360/internal/monastery"
	"github.com/sacred-sikkim/monastery360/internal/retriever"
	"github.com/sacred-sikkim/monastery360/internal/sqlite"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("monastery360: .env file not loaded", "error", err)
	} else {
		logger.Info("monastery360: environment loaded from .env")
	}

	addr := flag.String("addr", ":8081", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite database")
	cacheTTL := flag.String("cache-ttl", "", "response cache lifetime (e.g. 5m, 90s)")
	retrievalLimit := flag.Int("retrieval-limit", 0, "maximum monasteries retrieved per query (0 uses defaults)")
	flag.Parse()

	logger.Info("monastery360: startup initiated", "addr", *addr, "db", *dbPath)

	storeCfg, err := sqlite.LoadConfig()
	if err != nil {
		logger.Error("monastery360: store config load failed", "error", err)
		fmt.Println("store config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*dbPath); trimmed != "" {
		storeCfg.Path = trimmed
	}
	if err := os.MkdirAll(filepath.Dir(storeCfg.Path), 0o755); err != nil {
		logger.Error("monastery360: data directory unavailable", "error", err)
		fmt.Println("data directory error:", err)
		os.Exit(1)
	}

	store, err := sqlite.OpenWithConfig(storeCfg)
	if err != nil {
		logger.Error("monastery360: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	corpus, err := monastery.SeedCorpus()
	if err != nil {
		logger.Error("monastery360: embedded corpus unreadable", "error", err)
		fmt.Println("corpus error:", err)
		os.Exit(1)
	}
	inserted, err := store.SeedMonasteries(ctx, corpus)
	if err != nil {
		logger.Error("monastery360: corpus seeding failed", "error", err)
		fmt.Println("seed error:", err)
		os.Exit(1)
	}
	if inserted > 0 {
		logger.Info("monastery360: corpus seeded", "monasteries", inserted)
	}

	records, err := store.ListMonasteries(ctx)
	if err != nil {
		logger.Error("monastery360: corpus load failed", "error", err)
		fmt.Println("corpus load error:", err)
		os.Exit(1)
	}
	index := retriever.New(records)
	logger.Info("monastery360: retrieval index ready", "monasteries", index.Len())

	provider := llm.NewProvider()
	logger.Info("monastery360: llm provider ready", "provider", provider.Name())

	chatCfg := chat.DefaultConfig()
	if trimmed := strings.TrimSpace(*cacheTTL); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("monastery360: invalid cache ttl", "value", trimmed, "error", err)
			fmt.Println("cache ttl error:", err)
			os.Exit(1)
		}
		chatCfg.CacheTTL = dur
	}
	if *retrievalLimit > 0 {
		chatCfg.RetrievalLimit = *retrievalLimit
	}

	chatSvc, err := chat.NewService(index, provider, store, chatCfg)
	if err != nil {
		logger.Error("monastery360: chat service construction failed", "error", err)
		fmt.Println("chat service error:", err)
		os.Exit(1)
	}

	server, err := api.NewServer(index, chatSvc, store)
	if err != nil {
		logger.Error("monastery360: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("monastery360: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("monastery360: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDBPath() string {
	return filepath.Join("data", "monastery360.db")
}
