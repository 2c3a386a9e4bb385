// Command word-mcp is a stdio MCP server for creating, editing, formatting,
// and protecting Word documents inside a set of allowed directories.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/LuiccianDev/mcp-word-office/internal/config"
	"github.com/LuiccianDev/mcp-word-office/internal/metrics"
	"github.com/LuiccianDev/mcp-word-office/internal/server"
	"github.com/LuiccianDev/mcp-word-office/internal/sysutil"
	"github.com/LuiccianDev/mcp-word-office/internal/tools"
)

func main() {
	// Optional .env for local runs; a missing file is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetLogLevel(cfg.LogLevel)
	log := sysutil.NewLogger(cfg.LogPretty)

	for _, dir := range cfg.AllowedDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("cannot create allowed directory")
		}
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metrics.Shutdown(ctx, srv)
		}()
	}

	deps := tools.Deps{Cfg: cfg, Log: log}
	s, err := server.New(cfg, log, tools.All(deps))
	if err != nil {
		log.Fatal().Err(err).Msg("server construction failed")
	}

	log.Info().
		Strs("allowed_dirs", cfg.AllowedDirs).
		Str("version", server.Version).
		Msg("word-mcp serving on stdio")

	if err := server.ServeStdio(s); err != nil {
		log.Fatal().Err(err).Msg("stdio server terminated")
	}
}
