package config

const (
	defaultLibraryDir        = "~/library"
	defaultCatalogDir        = "~/.local/share/discern/catalogs"
	defaultCacheDir          = "~/.local/share/discern/cache"
	defaultLogDir            = "~/.local/share/discern/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultMaxCandidates     = 5
	defaultReplaceRetry      = 3
	defaultReplaceDelayMilli = 250
)

func defaultScanExtensions() []string {
	return []string{".cue", ".bin", ".iso", ".img", ".chd"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			CatalogDir: defaultCatalogDir,
			CacheDir:   defaultCacheDir,
			LogDir:     defaultLogDir,
		},
		Scan: Scan{
			Extensions: defaultScanExtensions(),
		},
		Merge: Merge{
			DeleteSources: false,
			Flatten:       false,
			ReplaceRetry:  defaultReplaceRetry,
			ReplaceDelay:  defaultReplaceDelayMilli,
		},
		Catalog: Catalog{
			MaxCandidates: defaultMaxCandidates,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
