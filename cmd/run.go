package cmd

import (
	"context"
	"fmt"

	"github.com/danielolaszy/convostat/internal/adapter"
	"github.com/danielolaszy/convostat/internal/config"
	"github.com/danielolaszy/convostat/internal/corpus"
	"github.com/danielolaszy/convostat/internal/github"
	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/internal/normalize"
	"github.com/spf13/cobra"
)

// loadConfig reads the run config and applies command line overrides.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if len(o.corpora) > 0 {
		cfg.Corpora = cfg.Corpora[:0]
		for _, value := range o.corpora {
			cc, err := config.ParseCorpusFlag(value)
			if err != nil {
				return nil, err
			}
			cfg.Corpora = append(cfg.Corpora, cc)
		}
	}
	if len(o.labels) > len(cfg.Corpora) {
		return nil, fmt.Errorf("got %d labels for %d corpora", len(o.labels), len(cfg.Corpora))
	}
	for i, label := range o.labels {
		cfg.Corpora[i].Label = label
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("outlier-hours") {
		cfg.OutlierHours = o.outlierHours
	}
	if flags.Changed("enrich-languages") {
		cfg.GitHub.EnrichLanguages = o.enrichLanguages
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCorpora loads every configured corpus. Any corpus that fails to load
// aborts the run.
func loadCorpora(ctx context.Context, cfg *config.Config) ([]*corpus.Corpus, error) {
	sources, err := cfg.Sources()
	if err != nil {
		return nil, err
	}

	a := adapter.New(normalize.NewEnglish())

	var resolver github.LanguageResolver
	if cfg.GitHub.EnrichLanguages {
		client, err := github.NewClient(ctx, cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize github client: %w", err)
		}
		resolver = client
	}

	corpora := make([]*corpus.Corpus, 0, len(sources))
	for _, src := range sources {
		c, err := corpus.Load(src, a)
		if err != nil {
			logging.Error("failed to load corpus", "path", src.Path, "error", err)
			return nil, err
		}
		if resolver != nil {
			c.Enriched = github.EnrichLanguages(ctx, c.Records, resolver)
			logging.Info("enriched repository languages", "corpus", c.Name(), "records", c.Enriched)
		}
		corpora = append(corpora, c)
	}
	return corpora, nil
}

// prepare is the common first step of every statistics command.
func (o *rootOptions) prepare(cmd *cobra.Command) (*config.Config, []*corpus.Corpus, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	corpora, err := loadCorpora(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, corpora, nil
}
