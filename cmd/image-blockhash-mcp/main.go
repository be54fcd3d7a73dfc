package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/image-blockhash-mcp/internal/config"
	"github.com/ironsheep/image-blockhash-mcp/internal/hasher"
	"github.com/ironsheep/image-blockhash-mcp/internal/imaging"
	"github.com/ironsheep/image-blockhash-mcp/internal/server"
	"github.com/ironsheep/image-blockhash-mcp/internal/store"
	"github.com/ironsheep/image-blockhash-mcp/internal/web"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	httpMode := false
	httpAddr := ""

	// Handle --version, --help and --http
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-blockhash-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "--http":
			httpMode = true
			if len(os.Args) > 2 {
				httpAddr = os.Args[2]
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown option: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}

	if cfg.Debug() {
		log.Printf("Image Blockhash MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Defaults: %d bits, method %s, %d workers", cfg.DefaultBits, cfg.DefaultMethod, cfg.Workers)
	}

	opts := []hasher.Option{
		hasher.WithFetcher(imaging.NewFetcher(cfg.FetchTimeout)),
		hasher.WithLogger(log.Default(), cfg.Debug()),
		hasher.WithWorkers(cfg.Workers),
	}
	if cfg.CacheEnabled() {
		if cfg.CacheDB == "default" {
			cfg.CacheDB = store.DefaultPath()
		}
		cache, err := store.Open(cfg.CacheDB)
		if err != nil {
			log.Fatalf("Failed to open hash cache: %v", err)
		}
		defer cache.Close()
		if cfg.Debug() {
			n, _ := cache.Count()
			log.Printf("Hash cache %s (%d entries)", cfg.CacheDB, n)
		}
		opts = append(opts, hasher.WithStore(cache))
	}
	svc := hasher.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if httpMode {
		api := web.New(svc, cfg)
		go func() {
			<-ctx.Done()
			if err := api.Shutdown(); err != nil {
				log.Printf("HTTP shutdown error: %v", err)
			}
		}()
		if err := api.Listen(cfg.HTTPAddr); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
		return
	}

	server.Version = Version
	srv := server.New(svc, cfg)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("image-blockhash-mcp - MCP server for perceptual image fingerprints")
	fmt.Println()
	fmt.Println("Usage: image-blockhash-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println("  --http [ADDR]    Serve the HTTP API instead of MCP over stdio")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  BLOCKHASH_LOG_LEVEL=debug       Enable debug logging")
	fmt.Println("  BLOCKHASH_CACHE_DB=PATH         Persist hashes of local files in SQLite (\"default\" for the user config dir)")
	fmt.Println("  BLOCKHASH_DEFAULT_BITS=64       Default hash length (perfect square)")
	fmt.Println("  BLOCKHASH_DEFAULT_METHOD=quick  Default method: quick or precise")
	fmt.Println("  BLOCKHASH_HTTP_ADDR=:8080       HTTP API listen address")
	fmt.Println("  BLOCKHASH_FETCH_TIMEOUT=30s     Timeout for URL sources")
	fmt.Println("  BLOCKHASH_WORKERS=4             Batch hashing concurrency")
	fmt.Println()
	fmt.Println("Without --http the server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
