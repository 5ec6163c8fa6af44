package world_test

import (
	"testing"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMA2401PT/eztiles/tile"
	"github.com/CMA2401PT/eztiles/world"
	"github.com/CMA2401PT/eztiles/world/worldtest"
)

func TestMemoryProvider(t *testing.T) {
	worldtest.Run(t, func(t *testing.T) world.Provider { return worldtest.NewMemory() })
}

func TestChunkPosOf(t *testing.T) {
	assert.Equal(t, world.ChunkPos{0, 0}, world.ChunkPosOf(tile.Pos{15, 200, 15}))
	assert.Equal(t, world.ChunkPos{-1, 2}, world.ChunkPosOf(tile.Pos{-1, 0, 32}))
	assert.Equal(t, world.ChunkPos{-2, -1}, world.ChunkPosOf(tile.Pos{-17, 0, -16}))
}

func TestNBTStream(t *testing.T) {
	data := []map[string]interface{}{
		{"id": "a", "x": int32(1)},
		{"id": "b", "flags": [2]byte{1, 0}},
	}
	b, err := world.EncodeNBT(data, nbt.LittleEndian)
	require.NoError(t, err)
	got, err := world.DecodeNBT(b, nbt.LittleEndian)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1]["id"])

	empty, err := world.DecodeNBT(nil, nbt.LittleEndian)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = world.DecodeNBT(b[:len(b)-2], nbt.LittleEndian)
	assert.Error(t, err)
}
