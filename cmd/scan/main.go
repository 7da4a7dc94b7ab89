// Command scan runs a single synchronous permission scan and prints the
// result as JSON. Useful for scripting and for checking a device without
// running the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"permscope/internal/config"
	"permscope/internal/domain/services"
	"permscope/internal/registry"
	"permscope/pkg/logger"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file")
		includeSystem = flag.Bool("include-system", false, "include system apps")
		onlyUseful    = flag.Bool("only-useful", false, "with -include-system, keep only user-updated system apps")
		filterPerms   = flag.String("permissions", "", "comma-separated permission identifiers to filter by")
		topN          = flag.Int("top", 0, "size of the top-risk ranking (0 = configured default)")
		summaryOnly   = flag.Bool("summary", false, "print only the aggregate, not per-app records")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: "warn", Format: "console"})
	logger.SetGlobal(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pkgRegistry, err := newRegistry(cfg.Registry, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize package registry")
	}

	scanCfg := cfg.Scan
	if *topN > 0 {
		scanCfg.TopRiskApps = *topN
	}

	resolver := services.NewProtectionResolverWithTTL(pkgRegistry, cfg.Cache.ProtectionTTL, log)
	assembler := services.NewAssembler(pkgRegistry, resolver, log)
	scanner := services.NewScanService(pkgRegistry, assembler, scanCfg, nil, nil, log)

	filter := scanner.DefaultFilter()
	filter.IncludeSystemApps = filter.IncludeSystemApps || *includeSystem
	filter.OnlyUsefulApps = filter.OnlyUsefulApps || *onlyUseful
	if *filterPerms != "" {
		for _, id := range strings.Split(*filterPerms, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.FilterByPermissions = append(filter.FilterByPermissions, id)
			}
		}
	}

	result, err := scanner.ScanOnce(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if *summaryOnly {
		err = enc.Encode(result.Aggregate)
	} else {
		err = enc.Encode(result)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
}

// newRegistry selects the package registry backend from configuration.
func newRegistry(cfg config.RegistryConfig, log *logger.Logger) (registry.PackageRegistry, error) {
	switch cfg.Backend {
	case "adb", "":
		return registry.NewADBRegistry(registry.ADBConfig{
			ADBPath: cfg.ADBPath,
			Serial:  cfg.Serial,
			Timeout: cfg.Timeout,
		}, log), nil
	case "static":
		static := registry.NewStaticRegistry()
		if cfg.FixtureFile != "" {
			if err := static.LoadFixture(cfg.FixtureFile); err != nil {
				return nil, err
			}
		}
		return static, nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q", cfg.Backend)
	}
}
