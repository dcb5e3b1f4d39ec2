package features

import (
	"fmt"
	"math/rand"

	"github.com/stonebriar/sagerelay/internal/dataset"
)

// DefaultSeed matches the shuffle seed used by the original training data
// preparation, so partitions are reproducible across runs.
const DefaultSeed = 1729

// Split shuffles rows deterministically with the given seed and slices them
// into train (first 70%), validation (next 20%), and test (remainder)
// partitions. Every row lands in exactly one partition.
func Split(t *dataset.Table, seed int64, trainRatio, valRatio float64) (train, validation, test *dataset.Table, err error) {
	if trainRatio <= 0 || valRatio <= 0 || trainRatio+valRatio >= 1 {
		return nil, nil, nil, fmt.Errorf("%w: train=%v validation=%v", ErrBadRatios, trainRatio, valRatio)
	}
	if t.Len() == 0 {
		return nil, nil, nil, dataset.ErrEmptyTable
	}

	rng := rand.New(rand.NewSource(seed))
	shuffled, err := t.Permute(rng.Perm(t.Len()))
	if err != nil {
		return nil, nil, nil, err
	}

	n := shuffled.Len()
	trainEnd := int(trainRatio * float64(n))
	valEnd := int((trainRatio + valRatio) * float64(n))

	return shuffled.Slice(0, trainEnd),
		shuffled.Slice(trainEnd, valEnd),
		shuffled.Slice(valEnd, n),
		nil
}
