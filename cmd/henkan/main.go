// Package main is the henkan CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/henkan/internal/config"
	"github.com/hyperjump/henkan/internal/convert"
	"github.com/hyperjump/henkan/internal/dbwriter"
	"github.com/hyperjump/henkan/internal/extract"
	"github.com/hyperjump/henkan/internal/server"
	"github.com/hyperjump/henkan/internal/session"
	"github.com/hyperjump/henkan/internal/watcher"
	"github.com/hyperjump/henkan/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/henkan/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "henkan server" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "convert":
		runConvert()
	case "sheets":
		runSheets()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("henkan version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (uploads, conversions, session reaping)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	components.Sessions.Start()
	defer components.Close()

	srv := server.NewServer(
		components.Service,
		components.Sessions,
		&cfg.Server,
		cfg.Storage.WorkDir,
		cfg.Storage.MaxUploadMB,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runConvert() {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outDir := fs.String("out", ".", "output directory for the .db (and .xlsx for PDF inputs)")
	excelOut := fs.String("excel-out", "", "move the intermediate .xlsx for PDF inputs to this directory")
	sheetList := fs.String("sheets", "", "comma-separated sheet names to convert (empty = all)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: henkan convert [flags] <file.pdf|file.xlsx|file.xls>")
		os.Exit(1)
	}
	inputPath := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		// The convert subcommand works without a config file; defaults apply.
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Printf("Failed to create output directory: %v\n", err)
		os.Exit(1)
	}
	svc := newService(cfg, logger)
	result, outputs, err := svc.ConvertPath(context.Background(), inputPath, *outDir, splitList(*sheetList))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conversion failed: %v\n", err)
		os.Exit(1)
	}
	for _, info := range result.Sheets {
		fmt.Printf("%s -> table %q (%d rows, %d columns)\n",
			info.SheetName, info.TableName, info.Rows, len(info.Columns))
	}
	if *excelOut != "" {
		if err := os.MkdirAll(*excelOut, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create excel output directory: %v\n", err)
			os.Exit(1)
		}
		for i, out := range outputs {
			if filepath.Ext(out) != ".xlsx" {
				continue
			}
			moved := filepath.Join(*excelOut, filepath.Base(out))
			if err := os.Rename(out, moved); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to move %s: %v\n", out, err)
				os.Exit(1)
			}
			outputs[i] = moved
		}
	}
	for _, out := range outputs {
		fmt.Printf("Wrote %s\n", out)
	}
}

func runSheets() {
	fs := flag.NewFlagSet("sheets", flag.ExitOnError)
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: henkan sheets <file.pdf|file.xlsx|file.xls>")
		os.Exit(1)
	}
	path := fs.Arg(0)
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}
	names, err := extract.NewExtractor().SheetNames(content, filepath.Ext(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list sheets: %v\n", err)
		os.Exit(1)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (watch events, conversions)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.Watch.Directories) == 0 {
		fmt.Printf("No watch directories configured in %s\n", resolvedConfigPath)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	outDir := cfg.Watch.OutputDir
	if outDir == "" {
		outDir = cfg.Watch.Directories[0]
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	svc := newService(cfg, logger)
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		outDir,
		func(path string) {
			result, outputs, err := svc.ConvertPath(context.Background(), path, outDir, nil)
			if err != nil {
				logger.Warn("watch convert failed", zap.String("path", path), zap.Error(err))
				return
			}
			logger.Info("converted",
				zap.String("path", path),
				zap.Strings("outputs", outputs),
				zap.Int("tables", len(result.Sheets)),
			)
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer watchSvc.Stop()
	watchSvc.SyncExistingFiles()

	logger.Info("watching",
		zap.Strings("directories", watchSvc.Directories()),
		zap.String("output_dir", outDir),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")
}

// Components holds initialized services for the server subcommand.
type Components struct {
	Sessions *session.Store
	Service  *convert.Service
}

func (c *Components) Close() {
	if c.Sessions != nil {
		c.Sessions.Stop()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	ttl := time.Duration(cfg.Storage.SessionTTLMinutes) * time.Minute
	storeOpts := []session.StoreOption{}
	if debug {
		storeOpts = append(storeOpts, session.WithLogger(logger))
	}
	store, err := session.NewStore(cfg.Storage.WorkDir, ttl, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	svc := newServiceWithStore(cfg, logger, store)
	return &Components{Sessions: store, Service: svc}, nil
}

// newService builds a conversion service with a throwaway session store, for
// the one-shot subcommands and the watcher, which only use ConvertPath.
func newService(cfg *config.Config, logger *zap.Logger) *convert.Service {
	return newServiceWithStore(cfg, logger, nil)
}

func newServiceWithStore(cfg *config.Config, logger *zap.Logger, store *session.Store) *convert.Service {
	extractor := extract.NewExtractor(
		extract.WithTextFallback(cfg.Convert.FallbackTextTableOrDefault()),
	)
	writer := dbwriter.NewWriter(
		dbwriter.WithTypeInference(cfg.Convert.InferColumnTypesOrDefault()),
	)
	return convert.NewService(store, extractor, writer,
		convert.WithLogger(logger),
		convert.WithPreviewRows(cfg.Convert.PreviewRows),
	)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printUsage() {
	fmt.Println(`henkan - PDF/Excel to SQLite database converter

Usage:
  henkan server [flags]            Start the HTTP server and browser UI
  henkan convert [flags] <file>    Convert a file to SQLite on the command line
  henkan sheets <file>             List the sheets (or detected tables) of a file
  henkan watch [flags]             Watch configured directories and auto-convert
  henkan version                   Show version
  henkan help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/henkan/config.yaml)
  --debug            Enable debug logging (uploads, conversions, session reaping)

Convert Flags:
  --config string    Config file path
  --out string       Output directory (default: current directory)
  --excel-out string Directory for the intermediate .xlsx of PDF inputs
  --sheets string    Comma-separated sheet names to convert (empty = all)

Watch Flags:
  --config string    Config file path
  --debug            Enable debug logging (watch events, conversions)

Examples:
  henkan server
  henkan convert report.pdf
  henkan convert --out ./db --sheets "Sheet1,Summary" workbook.xlsx
  henkan sheets workbook.xlsx
  henkan watch --config ./config.yaml`)
}
