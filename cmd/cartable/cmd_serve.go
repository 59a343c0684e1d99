package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/cartable/internal/chatbot"
	"github.com/user/cartable/internal/compose"
	"github.com/user/cartable/internal/delivery"
	"github.com/user/cartable/internal/directory"
	"github.com/user/cartable/internal/gateway"
	"github.com/user/cartable/internal/nlp"
	"github.com/user/cartable/internal/scheduler"
	"github.com/user/cartable/internal/session"
	"github.com/user/cartable/internal/speech"
	"github.com/user/cartable/internal/telegram"
	"github.com/user/cartable/internal/types"
	"github.com/user/cartable/internal/webhook"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cartable daemon",
	RunE:  runServe,
}

func writePIDFile(dataDir string) (string, error) {
	pidPath := filepath.Join(dataDir, "cartable.pid")
	pid := os.Getpid()
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write PID file: %w", err)
	}
	return pidPath, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pidPath, err := writePIDFile(cfg.DataDir)
	if err != nil {
		return err
	}
	defer os.Remove(pidPath)

	// Directory
	dir, err := directory.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open directory: %w", err)
	}
	defer dir.Close()

	// NLP pipeline
	classifier, err := nlp.NewClassifier(cfg.ModelPath())
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}
	interp := nlp.NewInterpreter(classifier)

	// Speech synthesis (optional)
	var synth types.Synthesizer
	if cfg.TTS.BaseURL != "" {
		synth = speech.NewClient(cfg.TTS.BaseURL, cfg.TTS.APIKey)
	}

	// Conversation engine
	sessions := session.New()
	composer := compose.New(synth, cfg.Language)
	engine := chatbot.New(interp, sessions, dir, composer)

	// Gateway
	gw := gateway.New(int64(cfg.MaxConcurrent))
	gw.Queue.SetProcessor(func(run *gateway.Run) error {
		reply := engine.HandleMessage(run.Ctx, run.Sender, run.Message.Text)
		if run.OnComplete != nil {
			run.OnComplete(reply)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw.Start(ctx)
	defer gw.Stop()

	slog.Info("cartable started",
		"data_dir", cfg.DataDir,
		"log_level", cfg.LogLevel,
		"max_concurrent", cfg.MaxConcurrent,
		"language", cfg.Language,
		"database", cfg.Database.Path,
		"tts_enabled", synth != nil,
		"pid_file", pidPath,
	)

	// Delivery registry
	deliveryReg := delivery.NewRegistry()

	// Telegram adapter
	if cfg.Telegram.Token != "" {
		adapter, err := telegram.New(cfg.Telegram.Token, gw, engine)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}
		go adapter.Start(ctx)
		slog.Info("telegram adapter started")

		deliveryReg.Register("telegram:", adapter.SendTo)
	} else {
		slog.Warn("telegram adapter disabled (no token)")
	}

	// Reminder scheduler and session sweep
	sched := scheduler.New(dir, composer, deliveryReg, sessions,
		cfg.Reminders.Schedule, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started", "reminders", cfg.Reminders.Schedule)

	// Webhook HTTP server
	if cfg.HTTP.Addr != "" {
		webhookSrv := webhook.NewServer(gw, engine, synth)
		httpServer := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: webhookSrv,
		}
		go func() {
			slog.Info("webhook server started", "addr", cfg.HTTP.Addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("webhook server error", "error", err)
			}
		}()
		go func() {
			<-ctx.Done()
			httpServer.Close()
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan
		if sig == syscall.SIGHUP {
			slog.Info("received SIGHUP, restarting")
			execPath, err := os.Executable()
			if err != nil {
				slog.Error("failed to get executable path", "error", err)
				continue
			}
			os.Remove(pidPath)
			if err := syscall.Exec(execPath, os.Args, os.Environ()); err != nil {
				slog.Error("failed to re-exec", "error", err)
				if _, writeErr := writePIDFile(cfg.DataDir); writeErr != nil {
					slog.Error("failed to re-write PID file", "error", writeErr)
				}
				continue
			}
		}
		// SIGINT or SIGTERM
		slog.Info("shutting down", "signal", sig)
		return nil
	}
}
