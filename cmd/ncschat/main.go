// main.go - Entry point for the NCS inquiry chat client.
// Loads the environment, builds the backend client and runs the Bubble Tea
// program until the user quits or the process is signalled.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ncschat/internal/backend"
	"ncschat/internal/config"
	"ncschat/internal/tui"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting ncschat",
		zap.String("endpoint", cfg.ChatAPIURL),
		zap.String("transcript_dir", cfg.TranscriptDir))

	client := backend.NewClient(cfg.ChatAPIURL, logger)
	model := tui.NewModel(client, cfg.TranscriptDir, logger)

	program := tea.NewProgram(model, tea.WithAltScreen())
	setupGracefulShutdown(program, logger)

	if _, err := program.Run(); err != nil {
		logger.Error("application failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("ncschat exited")
}

// newLogger writes structured logs to the configured file, or to stderr when
// none is set. Logging must never touch stdout, the terminal UI owns it.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.LogFile != "" {
		zapCfg.OutputPaths = []string{cfg.LogFile}
		zapCfg.ErrorOutputPaths = []string{cfg.LogFile}
	} else {
		zapCfg.OutputPaths = []string{"stderr"}
		zapCfg.ErrorOutputPaths = []string{"stderr"}
	}
	return zapCfg.Build()
}

// setupGracefulShutdown quits the program on SIGINT/SIGTERM; any request in
// flight is abandoned with the process.
func setupGracefulShutdown(program *tea.Program, logger *zap.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("received shutdown signal")
		program.Quit()
	}()
}
