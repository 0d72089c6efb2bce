// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/convostat/internal/aggregate"
	"github.com/danielolaszy/convostat/internal/corpus"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/spf13/viper"
)

// MaxCorpora is the largest number of corpora compared in one run.
const MaxCorpora = 3

// Config holds all configuration parameters for a run.
type Config struct {
	Corpora      []CorpusConfig `mapstructure:"corpora"`
	OutlierHours float64        `mapstructure:"outlier_hours"`
	Format       string         `mapstructure:"format"`
	GitHub       GitHubConfig   `mapstructure:"github"`
}

// CorpusConfig describes one corpus document.
type CorpusConfig struct {
	Path  string `mapstructure:"path"`
	Label string `mapstructure:"label"`
	Kind  string `mapstructure:"kind"`
}

// GitHubConfig holds settings for the optional language lookup.
type GitHubConfig struct {
	Token           string `mapstructure:"token"`
	Domain          string `mapstructure:"domain"`
	EnrichLanguages bool   `mapstructure:"enrich_languages"`
}

// LoadConfig reads the optional run config file at path and the GitHub
// environment variables. An empty path means defaults only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("outlier_hours", aggregate.DefaultOutlierHours)
	v.SetDefault("format", "text")
	v.SetDefault("github.domain", "github.com")

	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if config.GitHub.Domain == "" {
		config.GitHub.Domain = "github.com"
	}

	return config, nil
}

// Validate reports every problem with the configuration in a single error.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Corpora) == 0 {
		problems = append(problems, "no corpus configured")
	}
	if len(c.Corpora) > MaxCorpora {
		problems = append(problems, fmt.Sprintf("at most %d corpora can be compared, got %d", MaxCorpora, len(c.Corpora)))
	}
	for i, cc := range c.Corpora {
		if cc.Path == "" {
			problems = append(problems, fmt.Sprintf("corpus %d: missing path", i))
		}
		if cc.Kind != "" {
			if _, err := models.ParseSourceKind(cc.Kind); err != nil {
				problems = append(problems, fmt.Sprintf("corpus %d: %v", i, err))
			}
		}
	}
	if c.OutlierHours <= 0 {
		problems = append(problems, "outlier_hours must be positive")
	}
	switch c.Format {
	case "text", "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("unknown format %q", c.Format))
	}
	if c.GitHub.EnrichLanguages && c.GitHub.Token == "" {
		problems = append(problems, "GITHUB_TOKEN is required to enrich languages")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Sources converts the corpus entries into corpus.Source values.
func (c *Config) Sources() ([]corpus.Source, error) {
	sources := make([]corpus.Source, 0, len(c.Corpora))
	for _, cc := range c.Corpora {
		src := corpus.Source{Path: cc.Path, Label: cc.Label}
		if cc.Kind != "" {
			kind, err := models.ParseSourceKind(cc.Kind)
			if err != nil {
				return nil, err
			}
			src.Kind = kind
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// ParseCorpusFlag parses a "kind=path" command line value. The kind may be
// omitted ("path") when every item carries its own Type field.
func ParseCorpusFlag(value string) (CorpusConfig, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return CorpusConfig{}, fmt.Errorf("empty corpus value")
	}

	kind, path, found := strings.Cut(value, "=")
	if !found {
		return CorpusConfig{Path: value}, nil
	}
	if _, err := models.ParseSourceKind(kind); err != nil {
		return CorpusConfig{}, fmt.Errorf("corpus %q: %w", value, err)
	}
	if path == "" {
		return CorpusConfig{}, fmt.Errorf("corpus %q: missing path", value)
	}
	return CorpusConfig{Path: path, Kind: kind}, nil
}
