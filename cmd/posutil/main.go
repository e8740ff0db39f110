package main

import (
	"context"
	"fmt"
	"log"
	"os"

	aqm "github.com/appetiteclub/apt"

	"github.com/smartmenu-nz/pos-terminal/cmd/posutil/internal/commands"
)

const (
	appName    = "posutil"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := aqm.LoadConfig("POSUTIL", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := aqm.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "publish-demo":
		if err := commands.PublishDemo(ctx, config, logger); err != nil {
			log.Fatalf("Demo publishing failed: %v", err)
		}
		logger.Info("Demo changes published")

	case "publish-event":
		if err := commands.PublishEvent(ctx, config, logger); err != nil {
			log.Fatalf("Event publishing failed: %v", err)
		}

	case "dump-feed":
		if err := commands.DumpFeed(ctx, config, logger); err != nil {
			log.Fatalf("Feed dump failed: %v", err)
		}

	case "write-session":
		if err := commands.WriteSession(ctx, config, logger); err != nil {
			log.Fatalf("Session write failed: %v", err)
		}
		logger.Info("Terminal session written")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - POS terminal utility commands

Usage:
  %s <command> [options]

Commands:
  publish-demo   Publish sample change events to the terminal feed
  publish-event  Publish one change event (JSON on stdin) to live terminals
  dump-feed      Print the retained change feed, oldest first
  write-session  Write a demo staff session file for a terminal
  version        Print version
  help           Show this help

Config (env or flags):
  POSUTIL_NATS_URL        NATS server URL (default nats://localhost:4222)
  POSUTIL_RESTAURANT_ID   Restaurant to publish/scope to
  POSUTIL_SESSION_PATH    Session file path for write-session
`, appName, appName)
}
