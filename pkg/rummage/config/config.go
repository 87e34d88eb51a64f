package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rummage-io/rummage/pkg/rummage/index"
	"github.com/rummage-io/rummage/pkg/rummage/internalerr"
	"github.com/rummage-io/rummage/pkg/rummage/score"
)

// Config holds all engine tuning knobs. The defaults are calibration
// values; deployments normally only override stopwords and limits.
type Config struct {
	Index     Index    `yaml:"index"`
	Scoring   Scoring  `yaml:"scoring"`
	Limits    Limits   `yaml:"limits"`
	Stopwords []string `yaml:"stopwords"`
}

// Index configures the text index.
type Index struct {
	TitleWeight       float64 `yaml:"title_weight"`
	DescriptionWeight float64 `yaml:"description_weight"`
	TagsWeight        float64 `yaml:"tags_weight"`
	CategoryWeight    float64 `yaml:"category_weight"`
	Threshold         float64 `yaml:"threshold"`
}

// Scoring configures the composite weights of the three ranking paths.
type Scoring struct {
	Search   Search   `yaml:"search"`
	Backfill Backfill `yaml:"backfill"`
	Personal Personal `yaml:"personal"`
}

// Search weights apply to text-matched candidates.
type Search struct {
	Text       float64 `yaml:"text"`
	Content    float64 `yaml:"content"`
	Affinity   float64 `yaml:"affinity"`
	Popularity float64 `yaml:"popularity"`
	Freshness  float64 `yaml:"freshness"`
}

// Backfill weights apply to affinity-only candidates added when search
// under-fills the requested limit.
type Backfill struct {
	Affinity   float64 `yaml:"affinity"`
	Popularity float64 `yaml:"popularity"`
	Freshness  float64 `yaml:"freshness"`
}

// Personal weights apply to per-user recommendations.
type Personal struct {
	Affinity   float64 `yaml:"affinity"`
	Popularity float64 `yaml:"popularity"`
	Freshness  float64 `yaml:"freshness"`
}

// Limits holds default result list sizes.
type Limits struct {
	Search   int `yaml:"search"`
	Personal int `yaml:"personal"`
}

// Default returns the calibrated configuration.
func Default() Config {
	ix := index.DefaultConfig()
	w := score.DefaultWeights()
	return Config{
		Index: Index{
			TitleWeight:       ix.TitleWeight,
			DescriptionWeight: ix.DescriptionWeight,
			TagsWeight:        ix.TagsWeight,
			CategoryWeight:    ix.CategoryWeight,
			Threshold:         ix.Threshold,
		},
		Scoring: Scoring{
			Search: Search{
				Text:       w.SearchText,
				Content:    w.SearchContent,
				Affinity:   w.SearchAffinity,
				Popularity: w.SearchPopularity,
				Freshness:  w.SearchFreshness,
			},
			Backfill: Backfill{
				Affinity:   w.BackfillAffinity,
				Popularity: w.BackfillPopularity,
				Freshness:  w.BackfillFreshness,
			},
			Personal: Personal{
				Affinity:   w.PersonalAffinity,
				Popularity: w.PersonalPopularity,
				Freshness:  w.PersonalFreshness,
			},
		},
		Limits: Limits{Search: 10, Personal: 6},
	}
}

// Load reads a YAML file over the defaults, so partial files only
// override what they mention.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks ranges the engine depends on.
func (c Config) Validate() error {
	if c.Index.Threshold < 0 || c.Index.Threshold > 1 {
		return fmt.Errorf("index threshold %v outside [0,1]: %w", c.Index.Threshold, internalerr.ErrInvalidConfig)
	}
	if c.Limits.Search < 0 || c.Limits.Personal < 0 {
		return fmt.Errorf("negative result limit: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// IndexConfig converts to the index package's configuration.
func (c Config) IndexConfig() index.Config {
	return index.Config{
		TitleWeight:       c.Index.TitleWeight,
		DescriptionWeight: c.Index.DescriptionWeight,
		TagsWeight:        c.Index.TagsWeight,
		CategoryWeight:    c.Index.CategoryWeight,
		Threshold:         c.Index.Threshold,
	}
}

// ScoreWeights converts to the score package's weights.
func (c Config) ScoreWeights() score.Weights {
	return score.Weights{
		SearchText:       c.Scoring.Search.Text,
		SearchContent:    c.Scoring.Search.Content,
		SearchAffinity:   c.Scoring.Search.Affinity,
		SearchPopularity: c.Scoring.Search.Popularity,
		SearchFreshness:  c.Scoring.Search.Freshness,

		BackfillAffinity:   c.Scoring.Backfill.Affinity,
		BackfillPopularity: c.Scoring.Backfill.Popularity,
		BackfillFreshness:  c.Scoring.Backfill.Freshness,

		PersonalAffinity:   c.Scoring.Personal.Affinity,
		PersonalPopularity: c.Scoring.Personal.Popularity,
		PersonalFreshness:  c.Scoring.Personal.Freshness,
	}
}
