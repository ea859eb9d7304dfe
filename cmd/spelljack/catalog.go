package main

import (
	"context"
	"fmt"
	"strconv"
)

type CatalogCmd struct{}

func (c *CatalogCmd) Run(g *Globals) error {
	a, err := newApp(context.Background(), g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	specials := a.catalog.Specials()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Special cards (%d)", len(specials))))
	t := newTable("ID", "Card", "Effect", "Activation", "Cost", "Description")
	for _, d := range specials {
		name := d.Name
		if d.Symbol != "" {
			name = d.Symbol + " " + name
		}
		t.Row(strconv.Itoa(d.Card.ID), name, string(d.Effect), string(d.Activation), strconv.Itoa(d.Cost), d.Description)
	}
	fmt.Println(t.Render())
	return nil
}
