package main

import (
	"context"
	"fmt"
	"os"
)

type ShopCmd struct {
	List ShopListCmd `cmd:"" default:"1" help:"Show cards for sale"`
	Buy  ShopBuyCmd  `cmd:"" help:"Buy a card by id"`
}

type ShopListCmd struct{}

func (c *ShopListCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := newApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Coins: %d\n\n", sess.Coins())
	printCards(os.Stdout, "Shop", a.catalog, sess.Shop(), true)
	return nil
}

type ShopBuyCmd struct {
	ID int `kong:"arg,help='Card id to buy'"`
}

func (c *ShopBuyCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := newApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	card, err := sess.Buy(c.ID)
	if err != nil {
		return err
	}
	if err := a.saveSession(ctx, sess); err != nil {
		return err
	}

	a.logger.Info("Bought card", "card", card.String(), "cost", card.Cost, "coins", sess.Coins())
	fmt.Printf("Bought %s for %d coins, %d left\n", card, card.Cost, sess.Coins())
	return nil
}
