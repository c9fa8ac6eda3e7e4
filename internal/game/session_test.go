package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deckInputs(ids ...string) []CardInput {
	inputs := make([]CardInput, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, CardInput{ID: id, Face: Face{Name: id}})
	}
	return inputs
}

func TestJoinStandardSession(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)

	reconnected, err := s.Join("t1", "Alice", deckInputs("a", "b", "c", "d", "e"), nil, nil)
	require.NoError(t, err)
	require.False(t, reconnected)

	require.Len(t, s.Players, 1)
	p := s.Players[0]
	assert.Equal(t, 20, p.Life)
	assert.Len(t, p.Library, 5)
	assert.Empty(t, p.Hand, "join must not deal an opening hand")
	assert.Equal(t, p.ID, s.ActivePlayerID, "first player becomes active")
	assert.Equal(t, 1, s.Turn)
}

func TestJoinRejectsEmptyDeck(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", nil, nil, nil)
	assert.ErrorIs(t, err, ErrDeckEmpty)
	assert.Empty(t, s.Players)
}

func TestJoinCommanderSession(t *testing.T) {
	s := NewSession("commander1", SessionTypeCommander)

	deck := deckInputs("x", "a", "b", "c")
	commander := []CardInput{{ID: "x", Face: Face{Name: "x"}}}
	_, err := s.Join("t1", "Alice", deck, nil, commander)
	require.NoError(t, err)

	p := s.Players[0]
	assert.Equal(t, 40, p.Life)
	require.Len(t, p.CommanderZone, 1)
	assert.Equal(t, "x", p.CommanderZone[0].ID)

	require.Len(t, p.Library, 3)
	assert.Negative(t, indexOfCard(p.Library, "x"), "commander must not be in the shuffle pool")
	for _, id := range []string{"a", "b", "c"} {
		assert.GreaterOrEqual(t, indexOfCard(p.Library, id), 0, "library must be a permutation of the non-commander pool")
	}
}

func TestJoinCommanderSessionRequiresCommander(t *testing.T) {
	s := NewSession("commander1", SessionTypeCommander)
	_, err := s.Join("t1", "Alice", deckInputs("a", "b"), nil, nil)
	assert.ErrorIs(t, err, ErrNoCommanderDesignated)
}

func TestJoinNameTakenByOnlinePlayer(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a"), nil, nil)
	require.NoError(t, err)

	_, err = s.Join("t2", "Alice", deckInputs("b"), nil, nil)
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Len(t, s.Players, 1)
}

func TestReconnectRebindsTransportID(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a", "b", "c"), nil, nil)
	require.NoError(t, err)

	_, err = s.MarkOffline("t1")
	require.NoError(t, err)

	reconnected, err := s.Join("t2", "Alice", nil, nil, nil)
	require.NoError(t, err, "reconnect must skip deck validation")
	assert.True(t, reconnected)

	require.Len(t, s.Players, 1)
	p := s.Players[0]
	assert.Equal(t, "t2", p.ID)
	assert.True(t, p.Online)
	assert.Len(t, p.Library, 3, "reconnect must not touch zones")
}

func TestReconnectResumesPausedSession(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a", "b"), nil, nil)
	require.NoError(t, err)
	_, err = s.Join("t2", "Bob", deckInputs("c", "d"), nil, nil)
	require.NoError(t, err)

	_, err = s.MarkOffline("t1")
	require.NoError(t, err)
	_, err = s.MarkOffline("t2")
	require.NoError(t, err)
	require.Empty(t, s.ActivePlayerID)
	require.Zero(t, s.Turn)

	reconnected, err := s.Join("t3", "Bob", nil, nil, nil)
	require.NoError(t, err)
	require.True(t, reconnected)

	assert.Equal(t, "t3", s.ActivePlayerID, "the reconnecting player resumes as active")
	assert.Equal(t, 1, s.Turn)
	assert.NoError(t, s.NextTurn(), "turn rotation must work again after the pause")
}

func TestReconnectKeepsActivePointerOnRebind(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a"), nil, nil)
	require.NoError(t, err)
	_, err = s.Join("t2", "Bob", deckInputs("b"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "t1", s.ActivePlayerID)

	// The active player drops while Bob stays online: no pause, but
	// the pointer must follow Alice's new transport id.
	_, err = s.MarkOffline("t1")
	require.NoError(t, err)

	_, err = s.Join("t9", "Alice", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "t9", s.ActivePlayerID)
	require.NoError(t, s.NextTurn())
	assert.Equal(t, "t2", s.ActivePlayerID)
}

func TestStartGameDealsOpeningHands(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a", "b", "c", "d", "e"), nil, nil)
	require.NoError(t, err)
	_, err = s.Join("t2", "Bob", deckInputs("1", "2", "3", "4", "5", "6", "7", "8", "9"), nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.StartGame())

	alice, bob := s.Players[0], s.Players[1]
	assert.Len(t, alice.Hand, 5, "a 5-card deck deals all 5")
	assert.Empty(t, alice.Library)
	assert.Len(t, bob.Hand, 7)
	assert.Len(t, bob.Library, 2)
	assert.Equal(t, 20, alice.Life)
	assert.Equal(t, 1, s.Turn)
	assert.Contains(t, []string{alice.ID, bob.ID}, s.ActivePlayerID)
}

func TestStartGameWithoutPlayers(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	assert.ErrorIs(t, s.StartGame(), ErrPlayerNotFound)
}

func TestResetPlayerRestoresDecklist(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	_, err := s.Join("t1", "Alice", deckInputs(ids...), nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.StartGame())

	p := s.Players[0]
	// Scatter: play a card, discard one, exile one from the library.
	require.NoError(t, s.MoveCard("t1", ZoneHand, ZoneBattlefield, p.Hand[0].ID, MoveOptions{}))
	require.NoError(t, s.MoveCard("t1", ZoneHand, ZoneGraveyard, p.Hand[0].ID, MoveOptions{}))
	require.NoError(t, s.MoveCard("t1", ZoneLibrary, ZoneExile, p.Library[0].ID, MoveOptions{}))

	require.NoError(t, s.ResetPlayer("t1"))

	assert.Len(t, p.Hand, 7)
	assert.Len(t, p.Library, 2)
	assert.Empty(t, p.Battlefield)
	assert.Empty(t, p.Graveyard)
	assert.Empty(t, p.Exile)

	got := make(map[string]int)
	for _, c := range p.Library {
		got[c.ID]++
	}
	for _, c := range p.Hand {
		got[c.ID]++
	}
	require.Len(t, got, len(ids))
	for _, id := range ids {
		assert.Equal(t, 1, got[id], "card %s must appear exactly once", id)
	}
}

func TestNextTurnAdvancesInJoinOrder(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	for _, p := range []struct{ id, name string }{{"t1", "Alice"}, {"t2", "Bob"}, {"t3", "Carol"}} {
		_, err := s.Join(p.id, p.name, deckInputs(p.id+"-a", p.id+"-b"), nil, nil)
		require.NoError(t, err)
	}
	require.Equal(t, "t1", s.ActivePlayerID)

	// Tap one of Alice's cards and verify the turn untaps it and she draws.
	require.NoError(t, s.MoveCard("t1", ZoneLibrary, ZoneBattlefield, "t1-a", MoveOptions{}))
	require.NoError(t, s.RotateCard("t1", "t1-a"))

	require.NoError(t, s.NextTurn())

	alice := s.Players[0]
	assert.Equal(t, RotationUntapped, alice.Battlefield[0].Rotation, "ending player's battlefield untaps")
	assert.Len(t, alice.Hand, 1, "ending player draws one")
	assert.Equal(t, 2, s.Turn)
	assert.Equal(t, "t2", s.ActivePlayerID)

	require.NoError(t, s.NextTurn())
	assert.Equal(t, "t3", s.ActivePlayerID)
	require.NoError(t, s.NextTurn())
	assert.Equal(t, "t1", s.ActivePlayerID, "rotation wraps modulo player count")
	assert.Equal(t, 4, s.Turn)
}

func TestMarkOfflinePausesWhenAllOffline(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a"), nil, nil)
	require.NoError(t, err)
	_, err = s.Join("t2", "Bob", deckInputs("b"), nil, nil)
	require.NoError(t, err)

	name, err := s.MarkOffline("t1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	assert.NotZero(t, s.Turn, "game continues while someone is online")

	_, err = s.MarkOffline("t2")
	require.NoError(t, err)
	assert.Zero(t, s.Turn)
	assert.Empty(t, s.ActivePlayerID)
}

func TestLeaveRequiresMatchingTransportID(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a"), nil, nil)
	require.NoError(t, err)

	_, err = s.Leave("t-evil", "t1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Len(t, s.Players, 1)

	name, err := s.Leave("t1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	assert.Empty(t, s.Players)
	assert.Empty(t, s.ActivePlayerID)
}

func TestLeaveHandsOffActivePointer(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a"), nil, nil)
	require.NoError(t, err)
	_, err = s.Join("t2", "Bob", deckInputs("b"), nil, nil)
	require.NoError(t, err)
	require.Equal(t, "t1", s.ActivePlayerID)

	_, err = s.Leave("t1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "t2", s.ActivePlayerID, "active pointer passes to the first remaining player")
}

func TestRemoveIfOffline(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a"), nil, nil)
	require.NoError(t, err)

	assert.False(t, s.RemoveIfOffline("Alice"), "online player is kept")
	require.Len(t, s.Players, 1)

	_, err = s.MarkOffline("t1")
	require.NoError(t, err)
	assert.True(t, s.RemoveIfOffline("Alice"))
	assert.Empty(t, s.Players)

	assert.False(t, s.RemoveIfOffline("Alice"), "second removal is a no-op")
}

func TestSessionIntentOperations(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a", "b", "c"), nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Draw("t1", 2))
	assert.Len(t, s.Players[0].Hand, 2)

	require.NoError(t, s.SetLife("t1", 13))
	assert.Equal(t, 13, s.Players[0].Life)

	require.NoError(t, s.SetMana("t1", "green", 3))
	assert.Equal(t, 3, s.Players[0].Mana.Green)
	assert.Error(t, s.SetMana("t1", "purple", 1))

	require.NoError(t, s.SetCounter("t1", "poison", 2))
	assert.Equal(t, 2, s.Players[0].Counters.Get("poison"))

	assert.ErrorIs(t, s.Draw("missing", 1), ErrPlayerNotFound)
}

func TestStaleMoveThroughSession(t *testing.T) {
	s := NewSession("session1", SessionTypeStandard)
	_, err := s.Join("t1", "Alice", deckInputs("a", "b"), nil, nil)
	require.NoError(t, err)

	err = s.MoveCard("t1", ZoneHand, ZoneBattlefield, "ghost", MoveOptions{})
	assert.True(t, errors.Is(err, ErrCardNotFound))
	assert.Len(t, s.Players[0].Library, 2, "stale move must not mutate state")
}
