package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/map-editor/internal/config"
	"github.com/annel0/map-editor/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (default: $EDITOR_CONFIG)")
		command    = flag.String("cmd", "stats", "Command: generate, stats, export, import, serve-metrics")
		storePath  = flag.String("store", "", "Map storage directory (overrides config)")
		file       = flag.String("file", "map.tiles.zst", "Tile stream file for export/import")
		from       = flag.String("from", "0,0,7", "Region start x,y,z")
		to         = flag.String("to", "63,63", "Region end x,y (z is taken from -from)")
		seed       = flag.Int64("seed", 0, "Generator seed (0: from config)")
		name       = flag.String("name", "", "Map name for a new map")
		serve      = flag.Bool("serve", false, "Keep serving /metrics after the command")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *storePath != "" {
		cfg.Storage.Path = *storePath
	}
	if *name != "" {
		cfg.Editor.Name = *name
	}
	if *seed != 0 {
		cfg.Mapgen.Seed = *seed
	}

	if err := logging.InitDefaultLogger(cfg.Logging.Options()); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *command {
	case "generate":
		fromPos, toPos, err := parseRegion(*from, *to)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		n, err := app.Generate(fromPos, toPos)
		if err != nil {
			log.Fatalf("❌ Generate failed: %v", err)
		}
		fmt.Printf("🌍 Generated %d tiles in %v - %v\n", n, fromPos, toPos)

	case "stats":
		stats, err := app.Stats()
		if err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}
		stats.Print(os.Stdout)

	case "export":
		n, err := app.Export(*file)
		if err != nil {
			log.Fatalf("❌ Export failed: %v", err)
		}
		fmt.Printf("📦 Exported %d tiles to %s\n", n, *file)

	case "import":
		n, err := app.Import(*file)
		if err != nil {
			log.Fatalf("❌ Import failed: %v", err)
		}
		fmt.Printf("📥 Imported %d tiles from %s\n", n, *file)

	case "serve-metrics":
		*serve = true

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: generate, stats, export, import, serve-metrics")
		os.Exit(1)
	}

	if *serve {
		if err := app.ServeMetrics(ctx); err != nil {
			log.Fatalf("❌ Metrics server failed: %v", err)
		}
	}
}
