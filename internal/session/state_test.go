package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lox/spelljack/internal/catalog"
	"github.com/lox/spelljack/internal/deck"
)

func testShop(t *testing.T) []deck.Card {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat.ShopCards()
}

func ids(cards []deck.Card) []int {
	out := make([]int, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()
	s := New(testShop(t))

	assert.Equal(t, 100, s.Coins())
	assert.Empty(t, s.ActivePlayDeck())
	assert.Empty(t, s.ActiveSpecialLoadout())

	owned := s.Owned()
	require.Len(t, owned, 52)
	assert.Equal(t, 100, owned[0].ID)
	assert.Equal(t, 151, owned[51].ID)
	assert.Len(t, s.AvailableForDeck(), 52)
	assert.Empty(t, s.AvailableSpecials())

	shop := s.Shop()
	assert.Equal(t, []int{1, 2, 3}, ids(shop[:3]))
	assert.Equal(t, 50, shop[0].Cost)
}

func TestPurchase(t *testing.T) {
	t.Parallel()

	t.Run("exact balance", func(t *testing.T) {
		s := New(testShop(t), WithCoins(50))
		card, err := s.Buy(1)
		require.NoError(t, err)
		assert.Equal(t, 50, card.Cost)
		assert.Equal(t, 0, s.Coins())
		assert.NotContains(t, ids(s.Shop()), 1)
		assert.Contains(t, ids(s.Owned()), 1)
	})

	t.Run("one coin short", func(t *testing.T) {
		s := New(testShop(t), WithCoins(49))
		before := s.Snapshot()
		_, err := s.Buy(1)
		require.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Contains(t, err.Error(), "costs 50 coins, balance is 49")
		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("not in shop", func(t *testing.T) {
		s := New(testShop(t))
		_, err := s.Buy(999)
		require.ErrorIs(t, err, ErrCardNotFound)
	})

	t.Run("bought twice", func(t *testing.T) {
		s := New(testShop(t))
		_, err := s.Buy(3)
		require.NoError(t, err)
		_, err = s.Buy(3)
		require.ErrorIs(t, err, ErrCardNotFound)
		assert.Equal(t, 80, s.Coins())
	})
}

func TestCoins(t *testing.T) {
	t.Parallel()
	s := New(nil, WithCoins(10))
	s.AddCoins(-5)
	s.AddCoins(0)
	assert.Equal(t, 10, s.Coins())
	s.AddCoins(5)
	assert.Equal(t, 15, s.Coins())

	assert.False(t, s.SpendCoins(16))
	assert.False(t, s.SpendCoins(-1))
	assert.True(t, s.SpendCoins(15))
	assert.Equal(t, 0, s.Coins())
}

func TestDeckEditor(t *testing.T) {
	t.Parallel()
	s := New(testShop(t))

	require.NoError(t, s.AddToDeck(100))
	require.NoError(t, s.AddToDeck(101))
	assert.Equal(t, []int{100, 101}, ids(s.ActivePlayDeck()))
	assert.NotContains(t, ids(s.AvailableForDeck()), 100, "a deck card is never available to add")
	assert.Len(t, s.Owned(), 52)

	require.ErrorIs(t, s.AddToDeck(100), ErrCardNotFound)

	require.NoError(t, s.RemoveFromDeck(100))
	assert.Equal(t, []int{101}, ids(s.ActivePlayDeck()))
	assert.Contains(t, ids(s.AvailableForDeck()), 100)
	require.ErrorIs(t, s.RemoveFromDeck(100), ErrCardNotFound)
}

func TestDeckCapacity(t *testing.T) {
	t.Parallel()
	s := New(testShop(t), WithLimits(2, 1), WithCoins(1000))

	require.NoError(t, s.AddToDeck(100))
	require.NoError(t, s.AddToDeck(101))
	err := s.AddToDeck(102)
	require.ErrorIs(t, err, ErrDeckCapacityExceeded)
	assert.Len(t, s.ActivePlayDeck(), 2)
	assert.Contains(t, ids(s.AvailableForDeck()), 102)

	_, err = s.Buy(1001)
	require.NoError(t, err)
	_, err = s.Buy(1002)
	require.NoError(t, err)
	require.NoError(t, s.Equip(1001))
	require.ErrorIs(t, s.Equip(1002), ErrDeckCapacityExceeded)
	assert.Equal(t, []int{1001}, ids(s.ActiveSpecialLoadout()))
	assert.Equal(t, []int{1002}, ids(s.AvailableSpecials()))
}

func TestLimitsDuringConcurrentEdits(t *testing.T) {
	t.Parallel()
	s := New(testShop(t), WithLimits(3, 2), WithCoins(1000))

	var g errgroup.Group
	g.Go(func() error {
		for _, id := range []int{100, 101, 102} {
			if err := s.AddToDeck(id); err != nil {
				return err
			}
		}
		return nil
	})
	for range 4 {
		g.Go(func() error {
			for range 50 {
				deckLimit, loadoutLimit := s.Limits()
				if deckLimit != 3 || loadoutLimit != 2 {
					return fmt.Errorf("limits changed to %d/%d", deckLimit, loadoutLimit)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Len(t, s.ActivePlayDeck(), 3)
}

func TestDefaultCaps(t *testing.T) {
	t.Parallel()
	s := New(testShop(t), WithCoins(10000))
	for _, c := range s.AvailableForDeck() {
		require.NoError(t, s.AddToDeck(c.ID))
	}
	assert.Len(t, s.ActivePlayDeck(), DefaultDeckLimit)

	for _, c := range s.Shop() {
		if c.Special {
			_, err := s.Buy(c.ID)
			require.NoError(t, err)
		}
	}
	specials := s.AvailableSpecials()
	for i, c := range specials[:DefaultLoadoutLimit] {
		require.NoError(t, s.Equip(c.ID), "equip %d", i)
	}
	require.ErrorIs(t, s.Equip(specials[DefaultLoadoutLimit].ID), ErrDeckCapacityExceeded)
}

func TestCardKinds(t *testing.T) {
	t.Parallel()
	s := New(testShop(t))
	_, err := s.Buy(1001)
	require.NoError(t, err)

	require.ErrorIs(t, s.AddToDeck(1001), ErrWrongCardKind)
	require.ErrorIs(t, s.Equip(100), ErrWrongCardKind)

	require.NoError(t, s.Equip(1001))
	require.NoError(t, s.Unequip(1001))
	assert.Empty(t, s.ActiveSpecialLoadout())
	assert.Equal(t, []int{1001}, ids(s.AvailableSpecials()))
}

func TestPurchasedStandardCardJoinsDeck(t *testing.T) {
	t.Parallel()
	s := New(testShop(t))
	_, err := s.Buy(2)
	require.NoError(t, err)
	require.NoError(t, s.AddToDeck(2))

	play := s.ActivePlayDeck()
	require.Len(t, play, 1)
	assert.Equal(t, "J♥", play[0].String())
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()
	s := New(testShop(t))
	_, err := s.Buy(1001)
	require.NoError(t, err)
	require.NoError(t, s.AddToDeck(100))
	require.NoError(t, s.Equip(1001))

	restored := New(testShop(t))
	require.NoError(t, restored.Restore(s.Snapshot()))
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	assert.Equal(t, s.Coins(), restored.Coins())
}

func TestSnapshotValidate(t *testing.T) {
	t.Parallel()
	m := deck.NewIDSource(1)
	std := deck.NewCard(m.Next(), deck.Ace, deck.Spades)
	special := deck.NewSpecialCard(m.Next(), "Shield", "shield", deck.Manual)

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"negative coins", Snapshot{Coins: -1}},
		{"special in deck", Snapshot{PlayDeck: []deck.Card{special}}},
		{"standard in loadout", Snapshot{Loadout: []deck.Card{std}}},
		{"duplicate across views", Snapshot{Collection: []deck.Card{std}, PlayDeck: []deck.Card{std}}},
		{"loadout too big", Snapshot{Loadout: []deck.Card{special, special, special, special}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			before := s.Snapshot()
			require.ErrorIs(t, s.Restore(tt.snap), ErrInvalidSnapshot)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}
