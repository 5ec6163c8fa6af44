package mcdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMA2401PT/eztiles/tile"
	"github.com/CMA2401PT/eztiles/world"
	"github.com/CMA2401PT/eztiles/world/worldtest"
)

func TestProvider(t *testing.T) {
	worldtest.Run(t, func(t *testing.T) world.Provider {
		p, err := New(t.TempDir(), 0)
		require.NoError(t, err)
		return p
	})
}

func TestProviderNether(t *testing.T) {
	worldtest.Run(t, func(t *testing.T) world.Provider {
		p, err := New(t.TempDir(), 1)
		require.NoError(t, err)
		return p
	})
}

func TestDimensionsAreSeparate(t *testing.T) {
	dir := t.TempDir()
	over, err := New(dir, 0)
	require.NoError(t, err)
	require.NoError(t, world.SaveTiles(over, []*tile.Tile{worldtest.Tile(t, tile.Info{Pos: tile.Pos{1, 2, 3}})}))
	require.NoError(t, over.Close())

	nether, err := New(dir, 1)
	require.NoError(t, err)
	defer nether.Close()
	chunks, err := nether.Chunks()
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestReopenKeepsTiles(t *testing.T) {
	dir := t.TempDir()
	p, err := New(dir, 0)
	require.NoError(t, err)
	require.NoError(t, world.SaveTiles(p, []*tile.Tile{
		worldtest.Tile(t, tile.Info{Pos: tile.Pos{5, 5, 5}, Data: map[string]interface{}{"hp": 3}, Callable: "counter"}),
	}))
	require.NoError(t, p.Close())

	p, err = New(dir, 0)
	require.NoError(t, err)
	defer p.Close()
	tiles, err := world.LoadAllTiles(p)
	require.NoError(t, err)
	require.Len(t, tiles, 1)
	assert.Equal(t, "counter", tiles[0].Callable())
	assert.True(t, tiles[0].NeedsUpdate())
}

func TestIndex(t *testing.T) {
	p := &Provider{dim: 0}
	assert.Equal(t, []byte{1, 0, 0, 0, 0xff, 0xff, 0xff, 0xff}, p.index(world.ChunkPos{1, -1}))
	p.dim = 2
	assert.Len(t, p.index(world.ChunkPos{1, -1}), 12)
}
