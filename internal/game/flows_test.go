package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spelljack/internal/deck"
	"github.com/lox/spelljack/internal/effects"
	"github.com/lox/spelljack/internal/randutil"
)

// startWithLoadout starts a classic round whose loadout holds one card for
// each effect id, all manual. It returns the loadout in the same order.
func startWithLoadout(t *testing.T, sess *fakeSession, m *cardMaker, player, dealer []deck.Card, ids ...deck.EffectID) (*Engine, []deck.Card) {
	t.Helper()
	for _, id := range ids {
		sess.loadout = append(sess.loadout, m.special(id, deck.Manual))
	}
	eng := newTestEngine(t, sess)
	_, err := eng.StartRound(testContext(t), classicRound(player, dealer)...)
	require.NoError(t, err)
	return eng, sess.loadout
}

func TestActivationRules(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	sess := &fakeSession{}
	auto := m.special(effects.FireAce, deck.Auto)
	sess.loadout = append(sess.loadout, auto)
	eng, loadout := startWithLoadout(t, sess, m, m.cards("10♠", "5♦"), m.cards("10♥", "7♣"), effects.Stabilizer)
	stab := loadout[1]

	_, err := eng.ActivateSpecialCard(ctx, 424242)
	require.ErrorIs(t, err, ErrInvalidActivation)

	_, err = eng.ActivateSpecialCard(ctx, auto.ID)
	require.ErrorIs(t, err, ErrInvalidActivation, "auto cards cannot be activated by hand")

	snap, err := eng.ActivateSpecialCard(ctx, stab.ID)
	require.NoError(t, err)
	assert.Contains(t, snap.Used, stab.ID)

	snap, err = eng.ActivateSpecialCard(ctx, stab.ID)
	require.ErrorIs(t, err, ErrInvalidActivation)
	assert.Contains(t, snap.LastMessage(), "already used")

	_, err = eng.Stand(ctx)
	require.NoError(t, err)
	_, err = eng.ActivateSpecialCard(ctx, stab.ID)
	require.ErrorIs(t, err, ErrNotPlayerTurn)
}

func TestPassiveLoadoutFiresAtRoundStart(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	purse := m.special(effects.AddCoins, deck.Passive)
	decree := m.special(effects.RoyalDecree, deck.Passive)
	sess := &fakeSession{loadout: []deck.Card{purse, decree}}
	eng := newTestEngine(t, sess)

	snap, err := eng.StartRound(ctx, WithTarget(40),
		WithMultipliers(deck.Uniform(deck.MinMultiplier)),
		WithDecks(deck.Stacked(m.cards("10♠", "5♦")...), deck.Stacked(m.cards("10♥", "7♣")...)))
	require.NoError(t, err)
	assert.Equal(t, effects.CoinEffectReward, sess.Coins())
	assert.True(t, snap.Flags.RoyalDecree)
	assert.ElementsMatch(t, []int{purse.ID, decree.ID}, snap.Used)
	assert.Equal(t, 15+4, snap.PlayerScore, "royal decree adds 2 per card")

	_, err = eng.ActivateSpecialCard(ctx, purse.ID)
	assert.ErrorIs(t, err, ErrInvalidActivation)
}

func TestAutoLoadoutFiresOnHit(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	fire := m.special(effects.FireAce, deck.Auto)
	eng := newTestEngine(t, &fakeSession{loadout: []deck.Card{fire}})

	snap, err := eng.StartRound(ctx, WithTarget(40),
		WithMultipliers(deck.Uniform(deck.MinMultiplier)),
		WithDecks(deck.Stacked(m.cards("A♠", "5♦", "2♣")...), deck.Stacked(m.cards("10♥", "7♣")...)))
	require.NoError(t, err)
	assert.False(t, snap.Flags.FireAce)
	assert.Equal(t, 16, snap.PlayerScore)

	snap, err = eng.Hit(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Flags.FireAce)
	assert.Contains(t, snap.Used, fire.ID)
	assert.Equal(t, 12+5+2, snap.PlayerScore)
}

func TestDrawnSpecialRescoresEarlierCards(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	fire := m.special(effects.FireAce, deck.Auto)
	player := append(m.cards("A♠", "5♦"), fire)
	eng := newTestEngine(t, &fakeSession{})

	_, err := eng.StartRound(ctx, WithTarget(40),
		WithMultipliers(deck.Uniform(deck.MinMultiplier)),
		WithDecks(deck.Stacked(player...), deck.Stacked(m.cards("10♥", "7♣")...)))
	require.NoError(t, err)

	snap, err := eng.Hit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[fireAce]", snap.PlayerHand[2].String())
	assert.Equal(t, 17, snap.PlayerScore, "the ace drawn earlier now counts 12")
	assert.Contains(t, snap.Used, fire.ID)
}

func TestChronometerHalvesNextDraws(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	sess := &fakeSession{}
	eng, loadout := startWithLoadout(t, sess, m,
		m.cards("2♠", "3♦", "8♣", "6♣", "4♣"),
		m.cards("10♥", "7♣"),
		effects.Chronometer)

	_, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)

	snap, err := eng.Hit(ctx)
	require.NoError(t, err)
	assert.True(t, snap.PlayerHand[2].HalfValue)
	assert.Equal(t, 5+4, snap.PlayerScore)

	snap, err = eng.Hit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5+4+3, snap.PlayerScore)

	snap, err = eng.Hit(ctx)
	require.NoError(t, err)
	assert.False(t, snap.PlayerHand[4].HalfValue)
	assert.Equal(t, 5+4+3+4, snap.PlayerScore)
	assert.Zero(t, snap.Flags.SlowDraws)
}

func TestMultiplierSnapshotsAreFixedAtDraw(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	sess := &fakeSession{}
	stab := m.special(effects.Stabilizer, deck.Manual)
	sess.loadout = []deck.Card{stab}
	eng := newTestEngine(t, sess)

	_, err := eng.StartRound(ctx, WithTarget(60),
		WithMultipliers(deck.Multipliers{20, 10, 10, 10}),
		WithDecks(deck.Stacked(m.cards("10♠", "5♠", "4♠")...), deck.Stacked(m.cards("10♥", "7♣")...)))
	require.NoError(t, err)

	snap, err := eng.ActivateSpecialCard(ctx, stab.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.Uniform(deck.MinMultiplier), snap.Multipliers)
	assert.Equal(t, 30, snap.PlayerScore, "cards already held keep x2.0")

	snap, err = eng.Hit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 34, snap.PlayerScore, "the new spade is drawn at x1.0")
}

func TestExtraCardDrawsTwice(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("2♠", "3♦", "4♣", "5♣", "6♣"),
		m.cards("10♥", "7♣"),
		effects.ExtraCard)

	_, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)

	snap, err := eng.Hit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2♠", "3♦", "4♣", "5♣"}, handStrings(snap.PlayerHand))
	assert.False(t, snap.Flags.ExtraCard)

	snap, err = eng.Hit(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.PlayerHand, 5)
}

func TestCardSwap(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦", "3♣", "4♣"),
		m.cards("10♥", "7♣"),
		effects.CardSwap)

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	require.Len(t, snap.PlayerHand, 2)
	assert.Equal(t, "10♠", snap.PlayerHand[0].String())
	assert.Equal(t, 2, snap.PlayerDeckSize, "the old card went back before the replacement was drawn")
	assert.Contains(t, snap.LastMessage(), "Swapped 5♦")
}

func TestHandReset(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦", "2♣", "3♣", "9♣"),
		m.cards("10♥", "7♣"),
		effects.HandReset)

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2♣", "3♣"}, handStrings(snap.PlayerHand))
	assert.Equal(t, 5, snap.PlayerScore)
	assert.Equal(t, 1, snap.PlayerDeckSize)
}

func TestHandResetWithoutCardsAbortsRound(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦", "2♣"),
		m.cards("10♥", "7♣"),
		effects.HandReset)

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.ErrorIs(t, err, ErrInsufficientCards)
	assert.Equal(t, ResultInsufficientCards, snap.Outcome.Result)
}

func TestCriticalChoice(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦", "2♣", "3♣", "4♣", "6♣"),
		m.cards("10♥", "7♣"),
		effects.CriticalChoice)

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	assert.Equal(t, effects.CardChoice, snap.PendingChoice)
	assert.Equal(t, []string{"2♣", "3♣", "4♣"}, handStrings(snap.CriticalOptions))

	_, err = eng.Hit(ctx)
	require.ErrorIs(t, err, ErrChoicePending)
	_, err = eng.ChooseSuit(ctx, deck.Hearts)
	require.ErrorIs(t, err, ErrNoChoicePending)
	_, err = eng.ChooseCriticalCard(ctx, 3)
	require.ErrorIs(t, err, ErrInvalidActivation)

	snap, err = eng.ChooseCriticalCard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"10♠", "5♦", "3♣"}, handStrings(snap.PlayerHand))
	assert.Equal(t, effects.NoChoice, snap.PendingChoice)
	assert.Empty(t, snap.CriticalOptions)
	assert.Equal(t, 1, snap.PlayerDeckSize, "unchosen cards leave the deck")

	_, err = eng.ChooseCriticalCard(ctx, 0)
	require.ErrorIs(t, err, ErrNoChoicePending)
}

func TestCriticalChoiceCanHitTargetExactly(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	sess := &fakeSession{}
	eng, loadout := startWithLoadout(t, sess, m,
		m.cards("10♠", "5♦", "2♣", "6♣", "4♣"),
		m.cards("10♥", "7♣"),
		effects.CriticalChoice)

	_, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	snap, err := eng.ChooseCriticalCard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ResultPerfect, snap.Outcome.Result)
	assert.Equal(t, 20, sess.Coins())
}

func TestSuitMagnet(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦", "2♣"),
		m.cards("10♥", "7♣"),
		effects.SuitMagnet)

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	assert.Equal(t, effects.SuitChoice, snap.PendingChoice)

	_, err = eng.Stand(ctx)
	require.ErrorIs(t, err, ErrChoicePending)

	_, err = eng.ChooseSuit(ctx, deck.Suit(9))
	require.ErrorIs(t, err, ErrInvalidActivation)

	snap, err = eng.ChooseSuit(ctx, deck.Hearts)
	require.NoError(t, err)
	assert.Equal(t, deck.Multiplier(20), snap.Multipliers.Get(deck.Hearts))
	assert.Equal(t, effects.NoChoice, snap.PendingChoice)

	_, err = eng.ChooseSuit(ctx, deck.Hearts)
	require.ErrorIs(t, err, ErrNoChoicePending)
}

func TestCartographerAndDestinyPeekWithoutDrawing(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦", "2♣"),
		m.cards("10♥", "7♣"),
		effects.Cartographer, effects.Destiny)

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	assert.Contains(t, snap.LastMessage(), "clubs")

	snap, err = eng.ActivateSpecialCard(ctx, loadout[1].ID)
	require.NoError(t, err)
	assert.Contains(t, snap.LastMessage(), "from 15 to 17 (+2)")
	assert.Len(t, snap.PlayerHand, 2)
	assert.Equal(t, 1, snap.PlayerDeckSize)
}

func TestLeafFall(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	sess := &fakeSession{}
	leaf := m.special(effects.LeafFall, deck.Manual)
	sess.loadout = []deck.Card{leaf}
	// IntN(2) = 1 drops the second card.
	eng := newTestEngine(t, sess, WithRand(randutil.NewScript(1)))

	_, err := eng.StartRound(testContext(t), classicRound(m.cards("10♠", "5♦"), m.cards("10♥", "7♣"))...)
	require.NoError(t, err)

	snap, err := eng.ActivateSpecialCard(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"10♠"}, handStrings(snap.PlayerHand))
	assert.Equal(t, 5, sess.Coins())
}

func TestLeafFallOntoTargetIsNotPerfect(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	sess := &fakeSession{}
	leaf := m.special(effects.LeafFall, deck.Manual)
	sess.loadout = []deck.Card{leaf}
	// IntN(3) = 1 drops the five.
	eng := newTestEngine(t, sess, WithRand(randutil.NewScript(1)))

	_, err := eng.StartRound(ctx, classicRound(m.cards("A♠", "5♦", "K♣"), m.cards("10♥", "7♣"))...)
	require.NoError(t, err)
	snap, err := eng.Hit(ctx)
	require.NoError(t, err)
	require.Equal(t, 16, snap.PlayerScore)

	snap, err = eng.ActivateSpecialCard(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A♠", "K♣"}, handStrings(snap.PlayerHand))
	assert.Equal(t, 21, snap.PlayerScore)
	assert.Equal(t, PhasePlayerTurn, snap.Phase, "only a draw can land a perfect")
	assert.Equal(t, 5, sess.Coins())

	snap, err = eng.Stand(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResultPlayerWin, snap.Outcome.Result)
	assert.Equal(t, 15, sess.Coins())
}

func TestRemoveDealerCard(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "9♦"),
		m.cards("10♥", "9♣", "3♠", "8♠"),
		effects.RemoveDealerCard)

	_, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)

	snap, err := eng.Stand(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"10♥", "3♠", "8♠"}, handStrings(snap.DealerHand))
	assert.Equal(t, ResultDealerWin, snap.Outcome.Result, "21 beats 19")
}

func TestUnknownEffectIsSkipped(t *testing.T) {
	t.Parallel()
	ctx := testContext(t)
	m := newCardMaker(t)
	eng, loadout := startWithLoadout(t, &fakeSession{}, m,
		m.cards("10♠", "5♦"),
		m.cards("10♥", "7♣"),
		"chameleon")

	snap, err := eng.ActivateSpecialCard(ctx, loadout[0].ID)
	require.NoError(t, err)
	assert.Contains(t, snap.LastMessage(), "no effect")
	assert.Contains(t, snap.Used, loadout[0].ID)
	assert.Equal(t, PhasePlayerTurn, snap.Phase)
}
