package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/persian-ocr-mcp/internal/config"
	"github.com/ironsheep/persian-ocr-mcp/internal/export"
	"github.com/ironsheep/persian-ocr-mcp/internal/imaging"
	"github.com/ironsheep/persian-ocr-mcp/internal/logging"
	"github.com/ironsheep/persian-ocr-mcp/internal/ocr"
	"github.com/ironsheep/persian-ocr-mcp/internal/pdf"
	"github.com/ironsheep/persian-ocr-mcp/internal/recognition"
	"github.com/ironsheep/persian-ocr-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("persian-ocr-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logger := logging.New("persian-ocr", logging.ParseLevel(cfg.LogLevel))
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	runner := newRunner(cfg, logger)

	if len(os.Args) > 1 && os.Args[1] == "recognize" {
		os.Exit(recognize(cfg, runner, os.Args[2:]))
	}

	srv := server.New(runner,
		server.WithPageRenderer(pdf.NewRasterizer(cfg.PdftoppmPath, cfg.TempDir)),
		server.WithEngineOptions(engineOptions(cfg, "")),
		server.WithLanguage(cfg.Language),
		server.WithPreviewDPI(cfg.PreviewDPI),
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
		server.WithLogger(logger),
	)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("persian-ocr-mcp - MCP server for Persian text recognition")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  persian-ocr-mcp                          Serve MCP over stdin/stdout")
	fmt.Println("  persian-ocr-mcp recognize <file> [-o out.txt]")
	fmt.Println("                                           Recognize one image or PDF")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from ./.env):")
	fmt.Printf("  %-30s debug, info, warn or error\n", config.EnvLogLevel)
	fmt.Printf("  %-30s Tesseract language (default fas)\n", config.EnvLanguage)
	fmt.Printf("  %-30s tesseract executable; unset uses libtesseract\n", config.EnvTesseractPath)
	fmt.Printf("  %-30s directory holding *.traineddata\n", config.EnvTessdataPrefix)
	fmt.Printf("  %-30s pdftoppm executable (default pdftoppm)\n", config.EnvPdftoppmPath)
	fmt.Printf("  %-30s PDF recognition resolution (default 300)\n", config.EnvDPI)
	fmt.Printf("  %-30s PDF preview resolution (default 100)\n", config.EnvPreviewDPI)
	fmt.Printf("  %-30s clean up scans before recognition (default true)\n", config.EnvPreprocess)
	fmt.Printf("  %-30s scratch directory for rasterized pages\n", config.EnvTempDir)
	fmt.Printf("  %-30s wait for a running task on exit (default 10s)\n", config.EnvShutdownTimeout)
	fmt.Println()
	fmt.Println("Configure the server in your MCP client (e.g., Claude Desktop).")
}

// engineOptions resolves the engine for a request: an explicit engine path
// wins over the configured one.
func engineOptions(cfg *config.Config, enginePath string) ocr.Options {
	if enginePath == "" {
		enginePath = cfg.TesseractPath
	}
	return ocr.Options{EnginePath: enginePath, TessdataPrefix: cfg.TessdataPrefix}
}

func newRunner(cfg *config.Config, logger *logging.Logger) *recognition.Runner {
	opts := []recognition.Option{
		recognition.WithEngineOpener(func(enginePath string) (recognition.Recognizer, error) {
			return ocr.Open(engineOptions(cfg, enginePath))
		}),
		recognition.WithRasterizer(pdf.NewRasterizer(cfg.PdftoppmPath, cfg.TempDir)),
		recognition.WithLanguage(cfg.Language),
		recognition.WithDPI(cfg.DPI),
		recognition.WithLogger(logger),
	}
	if cfg.Preprocess {
		opts = append(opts, recognition.WithPreprocessor(imaging.PrepareForOCR))
	}
	return recognition.NewRunner(opts...)
}

// recognize runs one recognition from the command line, printing log lines
// to stderr and the text to stdout or the -o file. It returns the exit code.
func recognize(cfg *config.Config, runner *recognition.Runner, args []string) int {
	fs := flag.NewFlagSet("recognize", flag.ContinueOnError)
	output := fs.String("o", "", "write the recognized text to this file")
	enginePath := fs.String("engine", "", "tesseract executable to use")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	// Allow the file before the flags as well.
	file := fs.Arg(0)
	if fs.NArg() > 1 {
		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return 2
		}
	}
	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: persian-ocr-mcp recognize <file> [-o out.txt]")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task, err := runner.Start(ctx, recognition.Request{FilePath: file, EnginePath: *enginePath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var result recognition.Result
	for e := range task.Events() {
		switch ev := e.(type) {
		case recognition.LogEvent:
			fmt.Fprintln(os.Stderr, ev.Message)
		case recognition.ProgressEvent:
			fmt.Fprintf(os.Stderr, "[%3d%%] %d/%d\n", ev.Percent(), ev.Completed, ev.Total)
		case recognition.Result:
			result = ev
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := runner.Close(closeCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	if !result.Succeeded {
		fmt.Fprintln(os.Stderr, result.Text)
		return 1
	}
	if *output == "" {
		fmt.Println(result.Text)
		return 0
	}
	path, err := export.SaveText(*output, result.Text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Saved to %s\n", path)
	return 0
}
