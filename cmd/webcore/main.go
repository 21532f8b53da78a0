package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/webcore/internal/browser"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/logging"
	"github.com/GriffinCanCode/AgentOS/webcore/internal/web"
)

func main() {
	// Parse flags
	rawURL := flag.String("url", "", "URL to load and summarize")
	target := flag.String("target", "", "Target window name for -url")
	serve := flag.Bool("serve", false, "Run the control API")
	text := flag.Bool("text", false, "Include page text in the summary")
	profileName := flag.String("profile", "", "Browser profile name (default from WEBCORE_PROFILE)")
	port := flag.String("port", "", "Control API port")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *profileName != "" {
		cfg.Profile.Name = *profileName
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	client, err := browser.New(cfg, browser.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create browser client", zap.Error(err))
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("Error closing browser client", zap.Error(err))
		}
	}()

	switch {
	case *serve:
		runServer(cfg, client, logger)
	case *rawURL != "":
		if err := summarize(client, *rawURL, *target, *text); err != nil {
			logger.Error("Load failed", zap.String("url", *rawURL), zap.Error(err))
			client.Close()
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func summarize(client *browser.Client, rawURL, target string, withText bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pg, err := client.Open(ctx, rawURL, target)
	if err != nil {
		return err
	}
	out, err := sonic.MarshalIndent(browser.Summarize(pg, withText), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runServer(cfg *config.Config, client *browser.Client, logger *logging.Logger) {
	srv := server.NewServer(cfg, client)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	// Wait for shutdown signal or error
	select {
	case <-sigChan:
		logger.Info("Shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
		if err := web.RemoveSpillFiles(); err != nil {
			logger.Error("Error removing spill files", zap.Error(err))
		}
	case err := <-errChan:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
		}
	}
}
