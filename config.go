package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrPostsDirRequired       = runtimeconfig.ErrPostsDirRequired
	ErrAssetsDirRequired      = runtimeconfig.ErrAssetsDirRequired
	ErrManifestFileRequired   = runtimeconfig.ErrManifestFileRequired
	ErrComponentsDirRequired  = runtimeconfig.ErrComponentsDirRequired
	ErrPostsPerPageInvalid    = runtimeconfig.ErrPostsPerPageInvalid
	ErrPageWindowInvalid      = runtimeconfig.ErrPageWindowInvalid
	ErrSidebarCountInvalid    = runtimeconfig.ErrSidebarCountInvalid
	ErrBaselineIDInvalid      = runtimeconfig.ErrBaselineIDInvalid
	ErrAnchorLevelsInvalid    = runtimeconfig.ErrAnchorLevelsInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	SiteConfig     = runtimeconfig.SiteConfig
	PathsConfig    = runtimeconfig.PathsConfig
	ListingConfig  = runtimeconfig.ListingConfig
	TaxonomyConfig = runtimeconfig.TaxonomyConfig
	PublishConfig  = runtimeconfig.PublishConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	RuntimeConfig  = runtimeconfig.RuntimeConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over the defaults. A blank path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
