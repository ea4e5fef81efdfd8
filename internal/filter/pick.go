package filter

import (
	"fmt"
	"math/rand/v2"

	"github.com/llehouerou/mediapick/internal/library"
)

// ErrNoCandidates is returned by PickRandom when nothing is eligible.
var ErrNoCandidates = fmt.Errorf("no eligible items: %w", library.ErrNotFound)

// PickRandom picks one eligible item uniformly at random. Candidates are
// selected without the disk check; the chosen file is checked for existence
// and another candidate is drawn if it is gone. rng may be nil.
func PickRandom(st *State, idx *library.Index, rng *rand.Rand) (library.Item, error) {
	pool, err := BuildEligibleSetWithoutFileCheck(st, idx)
	if err != nil {
		return library.Item{}, err
	}
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for len(pool) > 0 {
		i := intN(len(pool))
		if fileExists(pool[i].FullPath) {
			return pool[i], nil
		}
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return library.Item{}, ErrNoCandidates
}
