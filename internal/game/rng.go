package game

import "math/rand"

// ShuffleCards permutes cards in place with a Fisher-Yates shuffle.
func ShuffleCards(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// RandomIndex picks a uniform random index into a container of length n.
// Returns -1 for an empty container.
func RandomIndex(n int) int {
	if n <= 0 {
		return -1
	}
	return rand.Intn(n)
}
