package main

import (
	"context"
	"strings"

	"github.com/lox/spelljack/cmd/spelljack/shared"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/game"
	"github.com/lox/spelljack/internal/host"
	"github.com/lox/spelljack/internal/tui"
)

type PlayCmd struct {
	BridgeURL string `kong:"name='bridge-url',help='Host bridge websocket URL (overrides config)'"`
	NoPacing  bool   `kong:"help='Skip draw and trap reveal delays'"`
}

func (c *PlayCmd) Run(g *Globals) error {
	bootCtx := context.Background()
	a, err := newApp(bootCtx, g, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := shared.SetupSignalHandler(a.logger)

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	pacing := a.cfg.GamePacing()
	if c.NoPacing {
		pacing = game.Pacing{}
	}
	engine := game.NewEngine(sess, effects.NewRegistry(a.catalog, a.logger), a.logger,
		game.WithRules(a.cfg.Rules),
		game.WithPacing(pacing),
	)

	bridgeURL := strings.TrimSpace(c.BridgeURL)
	if bridgeURL == "" {
		bridgeURL = a.cfg.Host.BridgeURL
	}
	var notifier host.Notifier = host.NewLogNotifier(a.logger)
	if bridgeURL != "" {
		bridge := host.NewBridgeNotifier(bridgeURL, a.logger)
		defer func() { _ = bridge.Close() }()
		notifier = bridge
	}
	engine.EventBus().Subscribe(host.NewSubscriber(notifier))

	a.logger.Info("Starting session", "profile", a.profile, "coins", sess.Coins())

	err = tui.Run(ctx, tui.Options{
		Engine: engine,
		Wallet: sess,
		Logger: a.logger,
		OnRoundEnd: func(snap game.Snapshot) {
			if err := a.saveSession(context.Background(), sess); err != nil {
				a.logger.Error("Failed to save profile", "profile", a.profile, "error", err)
			}
		},
	})

	if saveErr := a.saveSession(context.Background(), sess); saveErr != nil {
		a.logger.Error("Failed to save profile", "profile", a.profile, "error", saveErr)
	}
	return err
}
