package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"taskboard/internal/config"
	"taskboard/internal/result"
	"taskboard/internal/server"
	"taskboard/internal/store"
	"taskboard/internal/task"
)

func main() {
	mode := flag.String("mode", "server", "server|export|help")
	httpAddr := flag.String("http-addr", "", "http listen address (overrides HTTP_ADDR)")
	dbPath := flag.String("db", "", "sqlite database path (overrides TASKS_DB)")
	format := flag.String("format", "json", "export format: json|csv|pdf")
	out := flag.String("out", "tasks_export.json", "export output path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	mgr := task.NewManager(st)

	switch *mode {
	case "server":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv := server.New(mgr)
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
			log.Fatalf("server: %v", err)
		}

	case "export":
		ex := result.NewExporter(mgr)
		b, err := ex.Export(context.Background(), *format)
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if err := os.WriteFile(*out, b, 0644); err != nil {
			log.Fatalf("write: %v", err)
		}
		fmt.Printf("Exported -> %s\n", *out)

	default:
		fmt.Println("Usage examples:")
		fmt.Println("  go run ./cmd --mode server --http-addr :8080")
		fmt.Println("  go run ./cmd --mode export --format csv --out ./tasks.csv")
	}
}
