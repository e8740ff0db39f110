package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	aqm "github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/smartmenu-nz/pos-terminal/internal/backend"
	"github.com/smartmenu-nz/pos-terminal/internal/feed"
	"github.com/smartmenu-nz/pos-terminal/internal/pos"
	"github.com/smartmenu-nz/pos-terminal/pkg"
)

const (
	appNamespace = "POSTERM"
	appName      = "pos-terminal"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	sessionPath, _ := config.GetString("session.path")
	if sessionPath == "" {
		sessionPath = "data/session.json"
	}
	sessions := pos.NewSessionStore(sessionPath)
	if err := sessions.Reload(); err != nil {
		logger.Errorf("no usable terminal session: %v", err)
	}

	restaurantID, _ := config.GetString("restaurant.id")
	if restaurantID == "" {
		if s := sessions.Session(); s != nil {
			restaurantID = s.RestaurantID
		}
	}
	if restaurantID == "" {
		log.Fatalf("Cannot setup %s(%s): restaurant id is not configured", appName, appVersion)
	}

	backendURL, _ := config.GetString("backend.url")
	backendKey, _ := config.GetString("backend.api_key")
	store := backend.NewHTTPClient(backendURL, backendKey)

	sse := pos.NewSSEHandler(logger)
	tones := pos.NewEmitter(nil)
	if volumeStr, _ := config.GetString("tone.volume"); volumeStr != "" {
		if volume, err := strconv.Atoi(volumeStr); err == nil {
			tones.SetVolume(volume)
		}
	}
	notifier := pos.NewNotifyBridge(sse, tones)

	board := pos.NewBoard(notifier, logger)
	refresher := pos.NewRefresher(store, board, restaurantID, logger)

	natsURL, _ := config.GetString("nats.url")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	var feedClient *feed.Client
	subscriber, err := pkg.NewNATSSubscriber(natsURL,
		func(err error) {
			// Non-fatal: the board stays usable on stale data while the
			// connection retries in the background.
			if err != nil {
				logger.Errorf("feed connection lost: %v", err)
				return
			}
			logger.Info("feed connection closed")
		},
		func() {
			if feedClient == nil {
				return
			}
			logger.Info("feed reconnected, resyncing board")
			if err := feedClient.Resync(context.Background()); err != nil {
				logger.Errorf("resync after reconnect failed: %v", err)
			}
		})
	if err != nil {
		log.Fatalf("Cannot connect to NATS subscriber: %v", err)
	}
	defer subscriber.Close()

	feedClient = feed.NewClient(subscriber, restaurantID, board, refresher.Refresh, logger,
		feed.WithOnEvent(sse.OnFeedEvent))

	var printer pos.TicketPrinter = pos.NewLogPrinter(logger)
	if printerURL, _ := config.GetString("printer.url"); printerURL != "" {
		printer = pos.NewHTTPPrinter(printerURL)
	}
	gate := pos.NewPaymentGate(board, store, printer, logger)

	handler := pos.NewHandler(board, store, gate, refresher, sessions, sse, config, logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(feedClient),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
