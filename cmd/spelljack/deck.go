package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lox/spelljack/internal/session"
)

type DeckCmd struct {
	Show    DeckShowCmd    `cmd:"" default:"1" help:"Show the play deck, loadout and collection"`
	Add     DeckAddCmd     `cmd:"" help:"Move standard cards from the collection into the play deck"`
	Remove  DeckRemoveCmd  `cmd:"" help:"Move standard cards from the play deck back to the collection"`
	Equip   DeckEquipCmd   `cmd:"" help:"Equip special cards into the loadout"`
	Unequip DeckUnequipCmd `cmd:"" help:"Return special cards from the loadout to the collection"`
}

type DeckShowCmd struct{}

func (c *DeckShowCmd) Run(g *Globals) error {
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

	deckLimit, loadoutLimit := sess.Limits()
	fmt.Printf("Coins: %d  deck limit: %d  loadout limit: %d\n\n", sess.Coins(), deckLimit, loadoutLimit)
	printCards(os.Stdout, "Play deck", a.catalog, sess.ActivePlayDeck(), false)
	printCards(os.Stdout, "Loadout", a.catalog, sess.ActiveSpecialLoadout(), false)
	printCards(os.Stdout, "Collection: standard", a.catalog, sess.AvailableForDeck(), false)
	printCards(os.Stdout, "Collection: special", a.catalog, sess.AvailableSpecials(), false)
	return nil
}

// DeckEditArgs applies one deck editor operation to each id, then saves once.
type DeckEditArgs struct {
	IDs []int `kong:"arg,name='id',help='Card ids'"`
}

func (c *DeckEditArgs) apply(g *Globals, op func(*session.State, int) error) error {
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

	for _, id := range c.IDs {
		if err := op(sess, id); err != nil {
			return err
		}
	}
	if err := a.saveSession(ctx, sess); err != nil {
		return err
	}

	fmt.Printf("Play deck: %d cards, loadout: %d cards\n", len(sess.ActivePlayDeck()), len(sess.ActiveSpecialLoadout()))
	return nil
}

type DeckAddCmd struct{ DeckEditArgs }

func (c *DeckAddCmd) Run(g *Globals) error { return c.apply(g, (*session.State).AddToDeck) }

type DeckRemoveCmd struct{ DeckEditArgs }

func (c *DeckRemoveCmd) Run(g *Globals) error { return c.apply(g, (*session.State).RemoveFromDeck) }

type DeckEquipCmd struct{ DeckEditArgs }

func (c *DeckEquipCmd) Run(g *Globals) error { return c.apply(g, (*session.State).Equip) }

type DeckUnequipCmd struct{ DeckEditArgs }

func (c *DeckUnequipCmd) Run(g *Globals) error { return c.apply(g, (*session.State).Unequip) }
