package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creatorhub-realtime/config"
	"creatorhub-realtime/internal/notify"
	"creatorhub-realtime/internal/realtime"
	"creatorhub-realtime/internal/store"
	"creatorhub-realtime/pkg/log"
)

// printToasts writes transient notifications to stdout.
type printToasts struct {
	ack      bool
	provider *notify.Provider
}

func (p *printToasts) Show(n store.Notification, duration time.Duration) {
	fmt.Printf("%s  %s %s [%s]  %s\n",
		n.ReceivedAt.Format(time.RFC3339), n.Icon, n.Title, n.Severity, n.Message)
	if p.ack && p.provider != nil {
		p.provider.SendAck(n.ID)
	}
}

// feedtail connects to a subject's notification channel and prints every
// classified notification until interrupted.
func main() {
	subjectKind := flag.String("subject-kind", "creator", "subject kind (creator or admin)")
	subjectID := flag.String("subject-id", "", "subject id to tail (required)")
	origin := flag.String("origin", "", "service origin, overrides REALTIME_ORIGIN")
	token := flag.String("token", "", "auth token, overrides REALTIME_TOKEN")
	ack := flag.Bool("ack", false, "acknowledge every notification on receipt")
	flag.Parse()

	if *subjectID == "" {
		fmt.Fprintln(os.Stderr, "usage: feedtail -subject-id <id> [-subject-kind creator|admin] [-origin URL] [-token TOKEN] [-ack]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	if *origin != "" {
		cfg.Realtime.Origin = *origin
	}
	if *token != "" {
		cfg.Realtime.Token = *token
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         log.ModeDevelopment,
		Encoding:     log.EncodingConsole,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx := context.Background()

	toasts := &printToasts{ack: *ack}
	provider := notify.New(*subjectKind, *subjectID, notify.Config{
		Realtime: realtime.Config{
			Origin:            cfg.Realtime.Origin,
			ChannelPath:       cfg.Realtime.ChannelPath,
			Token:             cfg.Realtime.Token,
			HandshakeTimeout:  cfg.Realtime.HandshakeTimeout,
			HeartbeatInterval: cfg.Realtime.HeartbeatInterval,
			PongWait:          cfg.Realtime.PongWait,
			WriteWait:         cfg.Realtime.WriteWait,
			Backoff: realtime.Backoff{
				Base:        cfg.Realtime.ReconnectBaseDelay,
				Max:         cfg.Realtime.ReconnectMaxDelay,
				MaxAttempts: cfg.Realtime.ReconnectMaxAttempts,
			},
		},
		MaxEntries: cfg.Store.MaxEntries,
	}, toasts, logger)
	toasts.provider = provider

	logger.Infof(ctx, "tailing notifications for %s/%s from %s", *subjectKind, *subjectID, cfg.Realtime.Origin)
	provider.Open()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Infof(ctx, "disconnecting (%d notifications, %d unread)", len(provider.Notifications()), provider.UnreadCount())
	provider.Close()
}
