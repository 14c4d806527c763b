package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrPostsDirRequired       = errors.New("blog config: posts directory is required")
	ErrAssetsDirRequired      = errors.New("blog config: assets directory is required")
	ErrManifestFileRequired   = errors.New("blog config: manifest file is required")
	ErrComponentsDirRequired  = errors.New("blog config: components directory is required")
	ErrPostsPerPageInvalid    = errors.New("blog config: posts per page must be positive")
	ErrPageWindowInvalid      = errors.New("blog config: page window must be zero or positive")
	ErrSidebarCountInvalid    = errors.New("blog config: sidebar counts must be zero or positive")
	ErrBaselineIDInvalid      = errors.New("blog config: baseline id must be positive")
	ErrAnchorLevelsInvalid    = errors.New("blog config: anchor levels must fall within 1..6")
	ErrLoggingProviderUnknown = errors.New("blog config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("blog config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("blog config: logging format is invalid")
)

// Config aggregates everything the blog services need. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Paths    PathsConfig    `yaml:"paths"`
	Listing  ListingConfig  `yaml:"listing"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Publish  PublishConfig  `yaml:"publish"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig holds presentation values stamped into generated pages.
type SiteConfig struct {
	Title           string `yaml:"title"`
	Language        string `yaml:"language"`
	TitleSuffix     string `yaml:"title_suffix"`
	FooterStartYear int    `yaml:"footer_start_year"`
}

// PathsConfig locates the site tree. Every path except Root is relative to Root.
type PathsConfig struct {
	Root          string `yaml:"root"`
	PostsDir      string `yaml:"posts_dir"`
	AssetsDir     string `yaml:"assets_dir"`
	ManifestFile  string `yaml:"manifest_file"`
	ComponentsDir string `yaml:"components_dir"`
	IconsDir      string `yaml:"icons_dir"`
	DraftsDir     string `yaml:"drafts_dir"`
}

// ListingConfig controls the index listing and sidebar widgets.
type ListingConfig struct {
	PostsPerPage      int      `yaml:"posts_per_page"`
	PageWindow        int      `yaml:"page_window"`
	RecentCount       int      `yaml:"recent_count"`
	RandomCount       int      `yaml:"random_count"`
	SummaryBlockTypes []string `yaml:"summary_block_types"`
}

// TaxonomyConfig controls category ordering, icons and tag aliases.
type TaxonomyConfig struct {
	CategoryPriority []string          `yaml:"category_priority"`
	CategoryIcons    map[string]string `yaml:"category_icons"`
	AllIcon          string            `yaml:"all_icon"`
	FallbackIcon     string            `yaml:"fallback_icon"`
	TagAliases       map[string]string `yaml:"tag_aliases"`
}

// PublishConfig controls the Markdown publishing pipeline.
type PublishConfig struct {
	BaselineID         int  `yaml:"baseline_id"`
	RegenerateManifest bool `yaml:"regenerate_manifest"`
	SanitizeSummary    bool `yaml:"sanitize_summary"`
}

// MarkdownConfig controls the goldmark renderer.
type MarkdownConfig struct {
	Extensions     []string `yaml:"extensions"`
	Fences         bool     `yaml:"fences"`
	HighlightStyle string   `yaml:"highlight_style"`
	HardWraps      bool     `yaml:"hard_wraps"`
	AnchorLevels   [2]int   `yaml:"anchor_levels"`
}

// RuntimeConfig controls the page runtime.
type RuntimeConfig struct {
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	MathJaxAttempts int           `yaml:"mathjax_attempts"`
	MathJaxInterval time.Duration `yaml:"mathjax_interval"`
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the settings the published site was built with.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:           "科学空间",
			Language:        "zh-CN",
			TitleSuffix:     " | 科学空间",
			FooterStartYear: 2009,
		},
		Paths: PathsConfig{
			Root:          ".",
			PostsDir:      "posts",
			AssetsDir:     "assets",
			ManifestFile:  "posts/manifest.json",
			ComponentsDir: "partials/components",
			IconsDir:      "icons",
			DraftsDir:     "drafts",
		},
		Listing: ListingConfig{
			PostsPerPage: 10,
			PageWindow:   2,
			RecentCount:  5,
			RandomCount:  5,
			SummaryBlockTypes: []string{
				"p", "h2", "h3", "h4", "h5", "ul", "ol", "li", "blockquote", "table", "figure",
			},
		},
		Taxonomy: TaxonomyConfig{
			CategoryPriority: []string{"计算成像", "人工智能", "工程实践", "数学研究"},
			CategoryIcons: map[string]string{
				"计算成像": "ct-scan.png",
				"人工智能": "technology.png",
				"工程实践": "implementation.png",
				"数学研究": "algorithm.png",
			},
			AllIcon:      "all.png",
			FallbackIcon: "math.png",
			TagAliases:   map[string]string{},
		},
		Publish: PublishConfig{
			BaselineID:         11384,
			RegenerateManifest: true,
			SanitizeSummary:    true,
		},
		Markdown: MarkdownConfig{
			Extensions:   []string{"gfm"},
			Fences:       true,
			AnchorLevels: [2]int{2, 4},
		},
		Runtime: RuntimeConfig{
			MathJaxAttempts: 200,
			MathJaxInterval: 50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Load reads a YAML file and overlays it on DefaultConfig. A blank path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("blog config: read %s: %w", path, err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("blog config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode overlays YAML data onto cfg. Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(cfg)
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Paths.PostsDir) == "" {
		return ErrPostsDirRequired
	}
	if strings.TrimSpace(cfg.Paths.AssetsDir) == "" {
		return ErrAssetsDirRequired
	}
	if strings.TrimSpace(cfg.Paths.ManifestFile) == "" {
		return ErrManifestFileRequired
	}
	if strings.TrimSpace(cfg.Paths.ComponentsDir) == "" {
		return ErrComponentsDirRequired
	}
	if cfg.Listing.PostsPerPage <= 0 {
		return fmt.Errorf("%w: %d", ErrPostsPerPageInvalid, cfg.Listing.PostsPerPage)
	}
	if cfg.Listing.PageWindow < 0 {
		return fmt.Errorf("%w: %d", ErrPageWindowInvalid, cfg.Listing.PageWindow)
	}
	if cfg.Listing.RecentCount < 0 {
		return fmt.Errorf("%w: recent", ErrSidebarCountInvalid)
	}
	if cfg.Listing.RandomCount < 0 {
		return fmt.Errorf("%w: random", ErrSidebarCountInvalid)
	}
	if cfg.Publish.BaselineID <= 0 {
		return ErrBaselineIDInvalid
	}
	low, high := cfg.Markdown.AnchorLevels[0], cfg.Markdown.AnchorLevels[1]
	if low < 1 || high > 6 || low > high {
		return fmt.Errorf("%w: %d..%d", ErrAnchorLevelsInvalid, low, high)
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger", "none":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
