package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func setupLogging() {
	var log_level slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG", "debug":
		log_level = slog.LevelDebug
	case "WARN", "warn":
		log_level = slog.LevelWarn
	case "ERROR", "error":
		log_level = slog.LevelError
	default:
		log_level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     log_level,
		AddSource: false,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {

			// Format time to show only the time (HH:MM:SS)
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format("15:04:05"))
			}

			return a
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)
}

func loadEnv() {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		slog.Warn("No .env file found, using environment variables directly.")
		return
	}

	err := godotenv.Load(".env")
	if err != nil {
		slog.Error("Error loading .env file", "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "thumbnailer",
	Short: "Thumbnail generation and regeneration for stored images",
	Long: `thumbnailer derives the configured thumbnails of uploaded images.

Example usage:
  thumbnailer serve                                  # Consume upload events
  thumbnailer regen gallery.photo image              # Build missing thumbnails
  thumbnailer regen gallery.photo image --force      # Rebuild every thumbnail
  thumbnailer url gallery.photo image p/a.png small  # Print a thumbnail URL`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, regenCmd, urlCmd)
}

func main() {
	loadEnv()
	setupLogging()

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
