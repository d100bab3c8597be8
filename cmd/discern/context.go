package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"discern/internal/catalog"
	"discern/internal/config"
	"discern/internal/identcache"
	"discern/internal/identity"
	"discern/internal/logging"
	"discern/internal/merge"
	"discern/internal/scan"
	"discern/internal/services"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", path, err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logCfg := *cfg
		if c.verboseFlag != nil && *c.verboseFlag {
			logCfg.Logging.Level = "debug"
		}
		c.logger, c.loggerErr = logging.NewFromConfig(&logCfg)
	})
	return c.logger, c.loggerErr
}

// loadCatalogIndex builds the catalog index from every catalog file found in
// the configured catalog directory. An empty directory yields a nil index;
// resolution then simply skips the catalog stage.
func (c *commandContext) loadCatalogIndex() (*catalog.Index, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	paths, err := discoverCatalogFiles(cfg.Paths.CatalogDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return catalog.Load(paths, logger)
}

// requireCatalogIndex is loadCatalogIndex for commands that cannot do
// anything useful without one.
func (c *commandContext) requireCatalogIndex() (*catalog.Index, error) {
	idx, err := c.loadCatalogIndex()
	if err != nil {
		return nil, err
	}
	if idx == nil {
		cfg, _ := c.ensureConfig()
		return nil, fmt.Errorf("no catalog files found in %s", cfg.Paths.CatalogDir)
	}
	return idx, nil
}

// openCache opens the identity cache. A nil return with nil error means the
// caller asked to run without a cache.
func (c *commandContext) openCache(disabled bool) (*identcache.Store, error) {
	if disabled {
		return nil, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return identcache.Open(cfg)
}

// newPipeline assembles the scan pipeline shared by the scan and merge
// commands. The returned closer releases the cache store, if any.
func (c *commandContext) newPipeline(noCache bool) (*scan.Pipeline, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	idx, err := c.loadCatalogIndex()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.openCache(noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("open identity cache: %w", err)
	}
	closer := func() error { return nil }

	var cache identity.Cache
	var sink scan.RecordSink
	if store != nil {
		cache = store
		sink = store
		closer = store.Close
	}

	resolver := identity.NewResolver(idx, cache, cfg.Catalog.MaxCandidates, logger)
	planner := merge.NewPlanner(logger)
	return scan.New(cfg, resolver, planner, sink, logger), closer, nil
}

func discoverCatalogFiles(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	var paths []string
	for _, pattern := range []string{"*.dat", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
