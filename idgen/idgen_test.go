package idgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/knapsack/config"
)

func TestNewGenerator_Types(t *testing.T) {
	for _, typ := range []string{"", "snowflake", "sonyflake"} {
		t.Run(typ, func(t *testing.T) {
			g, err := NewGenerator(config.SnowflakeConfig{Type: typ, MachineID: 3, StartTime: "2024-01-01"})
			require.NoError(t, err)

			seen := make(map[int64]bool)
			for range 200 {
				id := g.Generate()
				require.Positive(t, id)
				require.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true
			}
		})
	}
}

func TestNewGenerator_Errors(t *testing.T) {
	_, err := NewGenerator(config.SnowflakeConfig{Type: "uuid"})
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = NewGenerator(config.SnowflakeConfig{Type: "sonyflake", MachineID: 70000})
	assert.True(t, errors.Is(err, ErrInvalidMachineID))

	_, err = NewGenerator(config.SnowflakeConfig{Type: "snowflake", StartTime: "yesterday"})
	assert.True(t, errors.Is(err, ErrParseTime))

	_, err = NewGenerator(config.SnowflakeConfig{Type: "snowflake", MachineID: 5000})
	assert.True(t, errors.Is(err, ErrCreateNode))
}

func TestGenRunID(t *testing.T) {
	require.NoError(t, Init(config.SnowflakeConfig{Type: "snowflake", MachineID: 7}))
	a, b := GenRunID(), GenRunID()
	assert.True(t, strings.HasPrefix(a, "run-"))
	assert.NotEqual(t, a, b)
}

func TestGenerateRandomID(t *testing.T) {
	id, err := GenerateRandomID(16)
	require.NoError(t, err)
	assert.Len(t, id, 16)

	_, err = GenerateRandomID(7)
	assert.Error(t, err)

	assert.Len(t, GenRequestID(), 32)
}
