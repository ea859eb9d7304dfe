package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spelljack/internal/config"
	"github.com/lox/spelljack/internal/session"
)

func testGlobals(t *testing.T, driver string) *Globals {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "spelljack.hcl")
	content := fmt.Sprintf(`
storage {
  driver = %q
  path   = %q
}

log {
  level = "error"
  file  = %q
}
`, driver, filepath.Join(dir, "store"), filepath.Join(dir, "spelljack.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return &Globals{Config: path, Profile: "tester"}
}

func loadSession(t *testing.T, g *Globals) *session.State {
	t.Helper()
	ctx := context.Background()
	a, err := newApp(ctx, g, false)
	require.NoError(t, err)
	defer a.Close()
	sess, err := a.openSession(ctx)
	require.NoError(t, err)
	return sess
}

func TestShopAndDeckCommandsPersist(t *testing.T) {
	g := testGlobals(t, config.DriverFile)

	require.NoError(t, (&ShopBuyCmd{ID: 1002}).Run(g))
	require.NoError(t, (&DeckEquipCmd{DeckEditArgs{IDs: []int{1002}}}).Run(g))
	require.NoError(t, (&DeckAddCmd{DeckEditArgs{IDs: []int{100, 101}}}).Run(g))
	require.NoError(t, (&DeckRemoveCmd{DeckEditArgs{IDs: []int{101}}}).Run(g))

	sess := loadSession(t, g)
	assert.Equal(t, 60, sess.Coins())

	loadout := sess.ActiveSpecialLoadout()
	require.Len(t, loadout, 1)
	assert.Equal(t, 1002, loadout[0].ID)

	play := sess.ActivePlayDeck()
	require.Len(t, play, 1)
	assert.Equal(t, 100, play[0].ID)

	for _, c := range sess.Shop() {
		assert.NotEqual(t, 1002, c.ID, "bought cards leave the shop")
	}

	require.NoError(t, (&DeckUnequipCmd{DeckEditArgs{IDs: []int{1002}}}).Run(g))
	assert.Empty(t, loadSession(t, g).ActiveSpecialLoadout())
}

func TestFailedEditIsNotSaved(t *testing.T) {
	g := testGlobals(t, config.DriverFile)

	err := (&DeckAddCmd{DeckEditArgs{IDs: []int{100, 999}}}).Run(g)
	require.ErrorIs(t, err, session.ErrCardNotFound)
	assert.Empty(t, loadSession(t, g).ActivePlayDeck())

	err = (&DeckEquipCmd{DeckEditArgs{IDs: []int{100}}}).Run(g)
	require.ErrorIs(t, err, session.ErrWrongCardKind)
}

func TestBuyWithoutFunds(t *testing.T) {
	g := testGlobals(t, config.DriverSQLite)

	require.NoError(t, (&ShopBuyCmd{ID: 1}).Run(g))
	require.NoError(t, (&ShopBuyCmd{ID: 1002}).Run(g))
	err := (&ShopBuyCmd{ID: 1003}).Run(g)
	require.ErrorIs(t, err, session.ErrInsufficientFunds)
	assert.Equal(t, 10, loadSession(t, g).Coins())
}

func TestListCommands(t *testing.T) {
	g := testGlobals(t, config.DriverSQLite)

	require.NoError(t, (&ShopListCmd{}).Run(g))
	require.NoError(t, (&DeckShowCmd{}).Run(g))
	require.NoError(t, (&CatalogCmd{}).Run(g))

	require.NoError(t, (&ShopBuyCmd{ID: 3}).Run(g))
	require.NoError(t, (&ProfilesCmd{}).Run(g))

	err := (&ProfilesCmd{}).Run(testGlobals(t, config.DriverFile))
	require.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = openStore(ctx, config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "s.db")})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = openStore(ctx, config.StorageConfig{Driver: "floppy"})
	require.Error(t, err)
}

func TestInvalidProfile(t *testing.T) {
	g := testGlobals(t, config.DriverMemory)
	g.Profile = "../etc"
	_, err := newApp(context.Background(), g, false)
	require.ErrorIs(t, err, session.ErrInvalidProfile)
}
