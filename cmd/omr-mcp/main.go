package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ironsheep/camera-omr/internal/detection"
	"github.com/ironsheep/camera-omr/internal/omr"
	"github.com/ironsheep/camera-omr/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("camera-omr %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "grade":
			setupLogging()
			if err := runGrade(os.Args[2:], os.Stdout); err != nil {
				log.Fatalf("grade: %v", err)
			}
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	setupLogging()
	if debugEnabled() {
		log.Printf("camera-omr MCP server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	det, err := detection.NewDetector(getEnv("OMR_DETECTOR", "simple"))
	if err != nil {
		log.Fatalf("Detector: %v", err)
	}

	srv := server.New(det, Version)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("camera-omr - optical mark recognition for photographed answer sheets")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  omr-mcp [options]              Run the MCP server on stdin/stdout")
	fmt.Println("  omr-mcp grade -form f.yaml [flags] images-or-dirs...")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Grade flags:")
	fmt.Println("  -form path       Form file describing the sheet (required)")
	fmt.Println("  -debug N         0 = none, 1 = save rectified sheets, 2 = save mark overlays")
	fmt.Println("  -out dir         Directory for debug images")
	fmt.Println("  -parallel        Grade sections concurrently")
	fmt.Println("  -detector name   simple or gocv")
	fmt.Println("  -json            Print one JSON object per frame")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  OMR_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  OMR_DETECTOR=name      Default blob detector (simple, gocv)")
	fmt.Println()
	fmt.Println("In server mode the MCP protocol is spoken over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// setupLogging sends the binary's log output and, at debug level, the
// pipeline's structured logs to stderr
func setupLogging() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if debugEnabled() {
		omr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
}

func debugEnabled() bool {
	return getEnv("OMR_LOG_LEVEL", "") == "debug"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
