package evolution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/knapsack/xerrors"
)

func TestNewProblem_Validation(t *testing.T) {
	tests := []struct {
		name     string
		items    []Item
		capacity int
		want     *xerrors.Error
	}{
		{"empty catalogue", nil, 10, xerrors.ErrEmptyCatalogue},
		{"zero capacity", smallItems(), 0, xerrors.ErrInvalidCapacity},
		{"negative capacity", smallItems(), -3, xerrors.ErrInvalidCapacity},
		{"zero weight", []Item{{5, 0}}, 10, xerrors.ErrInvalidItem},
		{"zero value", []Item{{0, 3}}, 10, xerrors.ErrInvalidItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProblem(tt.items, tt.capacity)
			require.Nil(t, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestProblem_CatalogueIsCopied(t *testing.T) {
	items := smallItems()
	p := mustProblem(t, items, 10)
	items[0].Value = 999
	assert.Equal(t, 10, p.Item(0).Value)
}

func TestProblem_EvaluateAndScore(t *testing.T) {
	p := mustProblem(t, smallItems(), 10)

	value, weight := p.Evaluate([]bool{true, true, false, false, true})
	assert.Equal(t, 20, value)
	assert.Equal(t, 10, weight)
	assert.Equal(t, 20, p.Score(value, weight))

	value, weight = p.Evaluate([]bool{true, true, true, false, false})
	assert.Equal(t, 24, value)
	assert.Equal(t, 12, weight)
	assert.Equal(t, 0, p.Score(value, weight), "overweight is a hard constraint")
}

func TestProblem_NewIndividual(t *testing.T) {
	p := mustProblem(t, smallItems(), 10)

	_, err := p.NewIndividual([]bool{true})
	require.ErrorIs(t, err, xerrors.ErrGenomeMismatch)

	genes := []bool{false, true, true, true, false}
	ind, err := p.NewIndividual(genes)
	require.NoError(t, err)
	assert.Equal(t, 18, ind.Quality())
	assert.Equal(t, 9, ind.Weight())
	assert.Equal(t, []int{1, 2, 3}, ind.Items())
	assert.Equal(t, "01110", ind.String())

	genes[0] = true
	assert.False(t, ind.Has(0), "individual must own its genes")
}
