package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/internal/search"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	rebuild := flag.Bool("rebuild", false, "clear the index before publishing the feed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting crawler", "feed_url", cfg.Crawler.FeedURL, "rebuild", *rebuild)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *rebuild); err != nil {
		slog.Error("crawl failed", "error", err)
		os.Exit(1)
	}
	slog.Info("crawl complete")
}

func run(ctx context.Context, cfg *config.Config, rebuild bool) error {
	client := &http.Client{Timeout: cfg.Crawler.FetchTimeout}
	body, err := ingest.FetchFeed(ctx, client, cfg.Crawler)
	if err != nil {
		return err
	}

	entries, err := ingest.ParseFeed(body)
	if err != nil {
		return err
	}
	slog.Info("feed fetched", "entries", len(entries))

	baseURL := ingest.BaseURL(cfg.Crawler.FeedURL)
	docs := make([]search.Document, 0, len(entries))
	skipped := 0
	for i := range entries {
		doc, err := ingest.EntryToDocument(&entries[i], baseURL)
		if err != nil {
			slog.Warn("skipping invalid entry", "title", entries[i].Title, "error", err)
			skipped++
			continue
		}
		docs = append(docs, *doc)
	}
	if skipped > 0 {
		slog.Warn("entries skipped", "count", skipped)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchIngest)
	defer producer.Close()
	publisher := ingest.NewPublisher(producer)

	if rebuild {
		if err := publisher.PublishRebuild(ctx); err != nil {
			return err
		}
	}
	return publisher.PublishDocuments(ctx, docs)
}
