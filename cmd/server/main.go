package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"anime-watchlist/internal/config"
	"anime-watchlist/internal/handler"
	"anime-watchlist/internal/notify"
	"anime-watchlist/internal/repository"
	"anime-watchlist/internal/service"
)

func main() {
	// Parse CLI flags
	backupMode := flag.Bool("backup", false, "Back up the data directory and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Log)

	fs := afero.NewOsFs()
	backupSvc := service.NewBackupService(fs, cfg.DataDir, cfg.BackupDir)

	// CLI mode: back up and exit
	if *backupMode {
		log.Println("Running backup...")
		backupPath, err := backupSvc.Backup()
		if err != nil {
			log.Fatalf("Failed to create backup: %v", err)
		}
		fmt.Printf("Backup created at %s\n", backupPath)
		return
	}

	// Initialize activity database
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	db, err := repository.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize services
	var forwarder service.ActionForwarder
	if cfg.LogChatID != 0 {
		forwarder = notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.LogChatID)
	}
	activity := service.NewActivityLogger(repository.NewActivityRepository(db), forwarder)
	registry := repository.NewRegistry(fs, cfg.DataDir, cfg.StrictIndex)
	watchlists := service.NewWatchlistService(registry, activity)

	// Initialize Telegram Bot
	commands := notify.NewCommands(watchlists, activity, cfg.IsAdmin)
	bot, err := notify.NewTelegramBot(cfg.TelegramBotToken, commands, activity)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Initialize HTTP API
	var srv *http.Server
	if cfg.HTTPEnabled() {
		gin.SetMode(gin.ReleaseMode)
		r := gin.New()
		r.Use(gin.Recovery())
		handler.NewHTTPHandler(watchlists, activity, backupSvc, cfg.WebAPIToken).RegisterRoutes(r)

		srv = &http.Server{Addr: cfg.HTTPAddr, Handler: r}
		go func() {
			log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	// Initialize scheduler
	scheduler := service.NewScheduler(backupSvc)
	scheduler.Start()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutting down...")
		scheduler.Stop()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("HTTP shutdown error: %v", err)
			}
		}
		bot.Stop()
	}()

	// Start bot (blocking)
	log.Printf("Anime watchlist bot started. Data directory: %s", cfg.DataDir)
	bot.Start()
}

// setupLogging tees the standard logger to stdout and a rolling log file
func setupLogging(cfg config.LogConfig) {
	if cfg.File == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		log.Printf("Warning: failed to create log directory, logging to stdout only: %v", err)
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	log.SetFlags(log.LstdFlags)
}
