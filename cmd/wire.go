package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/oumajohn/vmhost-cli/internal/adapters/api"
	"github.com/oumajohn/vmhost-cli/internal/adapters/render/console"
	tomlrepo "github.com/oumajohn/vmhost-cli/internal/adapters/repo/toml"
	"github.com/oumajohn/vmhost-cli/internal/application"
	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/notify"
)

type app struct {
	session  *application.SessionContext
	store    *application.ResourceStore
	transfer *application.TransferService
	subUsers *application.SubUserQuotaManager
	tiers    *application.SubscriptionTierEngine
	billing  *application.BillingEngine
	notifier *notify.Timer
	now      func() time.Time
}

const (
	apiBaseURLKey     = "api.base_url"
	defaultAPIBaseURL = "https://vm-server.onrender.com/api"
)

func wireApp() (*app, error) {
	cfg := viper.New()
	cfg.SetDefault(apiBaseURLKey, defaultAPIBaseURL)

	sessionRepo, err := tomlrepo.NewSessionRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	session, err := application.NewSessionContext(context.Background(), sessionRepo)
	if err != nil {
		return nil, fmt.Errorf("wire session context: %w", err)
	}

	client, err := api.New(envOrDefault("VMC_API_BASE_URL", cfg.GetString(apiBaseURLKey)))
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	notifier := notify.New(notify.WithCallbacks(func(notification domain.Notification) {
		fmt.Fprintln(os.Stdout, console.RenderNotification(notification))
	}, nil))

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store := application.NewResourceStore(client, session, notifier, log)

	currentTier, err := domain.ParseTier(envOrDefault("VMC_CURRENT_PLAN", "bronze"))
	if err != nil {
		return nil, err
	}
	currentPlan, err := domain.PlanByTier(currentTier)
	if err != nil {
		return nil, err
	}

	return &app{
		session:  session,
		store:    store,
		transfer: application.NewTransferService(client, store, session, notifier),
		subUsers: application.NewSubUserQuotaManager(client, session, notifier),
		tiers:    application.NewSubscriptionTierEngine(client, session, notifier, currentPlan),
		billing:  application.NewBillingEngine(client, session, notifier),
		notifier: notifier,
		now:      time.Now,
	}, nil
}

// close disposes the notification timers so none fires after the
// command returns.
func (a *app) close() {
	a.notifier.Close()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
