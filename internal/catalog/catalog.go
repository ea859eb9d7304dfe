// Package catalog holds the static card content: the special card library and
// the standard bonus cards sold in the shop.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/spelljack/internal/deck"
)

//go:embed cards.hcl
var defaultSource []byte

type catalogFile struct {
	Standard []standardBlock `hcl:"standard,block"`
	Special  []specialBlock  `hcl:"special,block"`
}

type standardBlock struct {
	Key  string `hcl:"key,label"`
	ID   int    `hcl:"id"`
	Card string `hcl:"card"`
	Cost int    `hcl:"cost"`
}

type specialBlock struct {
	Key         string `hcl:"key,label"`
	ID          int    `hcl:"id"`
	Name        string `hcl:"name"`
	Symbol      string `hcl:"symbol,optional"`
	Effect      string `hcl:"effect"`
	Activation  string `hcl:"activation"`
	Cost        int    `hcl:"cost"`
	Description string `hcl:"description,optional"`
}

// Descriptor describes one special card.
type Descriptor struct {
	Key         string
	Name        string
	Symbol      string
	Effect      deck.EffectID
	Activation  deck.Activation
	Cost        int
	Description string
	Card        deck.Card
}

// Catalog is immutable once loaded.
type Catalog struct {
	specials []Descriptor
	standard []deck.Card
	byEffect map[deck.EffectID]Descriptor
	byID     map[int]deck.Card
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultSource, "cards.hcl")
}

// Load reads a catalog from an HCL file.
func Load(filename string) (*Catalog, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes catalog HCL.
func Parse(src []byte, filename string) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse catalog: %s", diags.Error())
	}

	var raw catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode catalog: %s", diags.Error())
	}

	c := &Catalog{
		byEffect: make(map[deck.EffectID]Descriptor),
		byID:     make(map[int]deck.Card),
	}

	for _, b := range raw.Standard {
		card, err := deck.ParseCard(b.ID, b.Card)
		if err != nil {
			return nil, fmt.Errorf("standard %s: %w", b.Key, err)
		}
		card.Cost = b.Cost
		if err := c.addCard(card); err != nil {
			return nil, fmt.Errorf("standard %s: %w", b.Key, err)
		}
		c.standard = append(c.standard, card)
	}

	for _, b := range raw.Special {
		activation, err := deck.ParseActivation(b.Activation)
		if err != nil {
			return nil, fmt.Errorf("special %s: %w", b.Key, err)
		}
		effect := deck.EffectID(b.Effect)
		if _, dup := c.byEffect[effect]; dup {
			return nil, fmt.Errorf("special %s: duplicate effect %q", b.Key, effect)
		}
		card := deck.NewSpecialCard(b.ID, b.Name, effect, activation)
		card.Cost = b.Cost
		if err := c.addCard(card); err != nil {
			return nil, fmt.Errorf("special %s: %w", b.Key, err)
		}
		d := Descriptor{
			Key:         b.Key,
			Name:        b.Name,
			Symbol:      b.Symbol,
			Effect:      effect,
			Activation:  activation,
			Cost:        b.Cost,
			Description: b.Description,
			Card:        card,
		}
		c.specials = append(c.specials, d)
		c.byEffect[effect] = d
	}

	return c, nil
}

func (c *Catalog) addCard(card deck.Card) error {
	if card.Cost < 0 {
		return fmt.Errorf("negative cost %d", card.Cost)
	}
	if _, dup := c.byID[card.ID]; dup {
		return fmt.Errorf("duplicate card id %d", card.ID)
	}
	c.byID[card.ID] = card
	return nil
}

// LookupEffect returns the descriptor of the special card carrying effect.
func (c *Catalog) LookupEffect(effect deck.EffectID) (Descriptor, bool) {
	d, ok := c.byEffect[effect]
	return d, ok
}

// Card returns a catalog card by id.
func (c *Catalog) Card(id int) (deck.Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Specials returns every special card descriptor in catalog order.
func (c *Catalog) Specials() []Descriptor {
	out := make([]Descriptor, len(c.specials))
	copy(out, c.specials)
	return out
}

// ShopCards returns every purchasable card ordered by id.
func (c *Catalog) ShopCards() []deck.Card {
	out := make([]deck.Card, 0, len(c.byID))
	for _, card := range c.byID {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Describe returns the player-facing description of any card.
func (c *Catalog) Describe(card deck.Card) string {
	if card.Special {
		if d, ok := c.byEffect[card.Effect]; ok && d.Description != "" {
			return d.Description
		}
	}
	return card.Describe()
}
