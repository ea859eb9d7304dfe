package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spelljack/internal/deck"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c, err := Default()
	require.NoError(t, err)

	specials := c.Specials()
	assert.Len(t, specials, 22)

	shield, ok := c.LookupEffect("shield")
	require.True(t, ok)
	assert.Equal(t, "Shield", shield.Name)
	assert.Equal(t, deck.Manual, shield.Activation)
	assert.True(t, shield.Card.Special)
	assert.Equal(t, shield.Cost, shield.Card.Cost)

	_, ok = c.LookupEffect("chameleon")
	assert.False(t, ok, "unimplemented effects are not in the catalog")

	ace, ok := c.Card(1)
	require.True(t, ok)
	assert.Equal(t, "A♦", ace.String())
	assert.Equal(t, 50, ace.Cost)

	shop := c.ShopCards()
	assert.Len(t, shop, 25)
	assert.Equal(t, 1, shop[0].ID)
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	c, err := Default()
	require.NoError(t, err)

	d, _ := c.LookupEffect("fireAce")
	assert.Contains(t, c.Describe(d.Card), "12")
	assert.Equal(t, "King - worth 10 points", c.Describe(deck.NewCard(1, deck.King, deck.Spades)))
	assert.Equal(t, "Number card worth 7 points", c.Describe(deck.NewCard(1, deck.Seven, deck.Spades)))
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "duplicate id",
			src: `
standard "a" {
  id = 1
  card = "A♦"
  cost = 5
}
standard "b" {
  id = 1
  card = "K♦"
  cost = 5
}`,
		},
		{
			name: "bad activation",
			src: `
special "s" {
  id = 9
  name = "S"
  effect = "shield"
  activation = "sometimes"
  cost = 5
}`,
		},
		{
			name: "bad card",
			src: `
standard "a" {
  id = 1
  card = "Z♦"
  cost = 5
}`,
		},
		{
			name: "syntax error",
			src:  `standard "a" {`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cards.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
special "only" {
  id = 77
  name = "Only"
  effect = "stabilizer"
  activation = "manual"
  cost = 10
}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Specials(), 1)
	assert.Equal(t, "Special card with effect stabilizer", c.Describe(deck.Card{Special: true, Effect: "stabilizer"}))

	_, err = Load(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
