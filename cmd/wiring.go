package main

import (
	"context"
	"fmt"

	"github.com/okian/perception/internal/adapters/llm"
	"github.com/okian/perception/internal/adapters/search"
	service "github.com/okian/perception/internal/app"
	"github.com/okian/perception/internal/config"
	"github.com/okian/perception/internal/domain/report"
	"github.com/okian/perception/pkg/logger"
)

// buildService constructs the search client, the generator and the service
// from cfg.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	style := report.StyleName(cfg.DefaultStyle)
	if _, err := report.Lookup(style); err != nil {
		return nil, fmt.Errorf("default_style: %w", err)
	}

	gen, err := llm.New(ctx, cfg, llm.WithLogger(log.Named("llm")))
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	searcher := search.New(cfg.SearchURL, cfg.SearchAPIKey,
		search.WithEngine(cfg.SearchEngine),
		search.WithNumResults(cfg.SearchNumResults),
		search.WithQueries(cfg.SearchGeneralQuery, cfg.SearchNewsQuery),
		search.WithLogger(log.Named("search")),
	)
	if cfg.SearchAPIKey == "" {
		log.Warn(ctx, "search_api_key is not set; every report will fail retrieval")
	}

	return service.New(searcher, gen,
		service.WithLogger(log.Named("service")),
		service.WithDefaultStyle(style),
		service.WithTemperature(cfg.GeneratorTemperature),
	), nil
}
