// Package worldtest holds the behaviour every world.Provider must show, shared by the
// provider test suites.
package worldtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMA2401PT/eztiles/tag"
	"github.com/CMA2401PT/eztiles/tile"
	"github.com/CMA2401PT/eztiles/world"
)

// Memory is a Provider keeping encoded chunks in a map.
type Memory struct {
	chunks map[world.ChunkPos][]byte
}

func NewMemory() *Memory {
	return &Memory{chunks: make(map[world.ChunkPos][]byte)}
}

func (m *Memory) LoadBlockNBT(pos world.ChunkPos) ([]map[string]interface{}, error) {
	b, ok := m.chunks[pos]
	if !ok {
		return nil, nil
	}
	return world.DecodeNBT(b, world.DefaultEncoding)
}

func (m *Memory) SaveBlockNBT(pos world.ChunkPos, data []map[string]interface{}) error {
	if len(data) == 0 {
		delete(m.chunks, pos)
		return nil
	}
	b, err := world.EncodeNBT(data, world.DefaultEncoding)
	if err != nil {
		return err
	}
	m.chunks[pos] = b
	return nil
}

func (m *Memory) Chunks() ([]world.ChunkPos, error) {
	chunks := make([]world.ChunkPos, 0, len(m.chunks))
	for c := range m.chunks {
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (m *Memory) Close() error { return nil }

// Tile creates a tile, failing the test on error.
func Tile(t *testing.T, info tile.Info) *tile.Tile {
	tl, err := tile.New(info)
	require.NoError(t, err)
	return tl
}

// Run checks the Provider returned by open against the world package helpers.
func Run(t *testing.T, open func(t *testing.T) world.Provider) {
	t.Run("RoundTrip", func(t *testing.T) {
		p := open(t)
		defer p.Close()
		tiles := []*tile.Tile{
			Tile(t, tile.Info{Pos: tile.Pos{1, 64, 1}, Data: map[string]interface{}{
				"hp": 20, "flags": []bool{true, false, true}, "name": "chest", "seed": int64(1) << 40,
			}, Callable: "counter", ScheduleUpdate: true}),
			Tile(t, tile.Info{Pos: tile.Pos{2, 64, 1}, Data: map[string]interface{}{"slots": []int{1, 2, 3}, "speed": 0.5}}),
			Tile(t, tile.Info{Pos: tile.Pos{-17, 10, 40}, Data: map[string]interface{}{"scale": float32(2)}}),
		}
		require.NoError(t, tiles[1].SetData("level", tag.Short(3)))
		require.NoError(t, world.SaveTiles(p, tiles))

		loaded, err := world.LoadAllTiles(p)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		want := map[tile.Pos]*tile.Tile{}
		for _, tl := range tiles {
			want[tl.Pos()] = tl
		}
		for _, got := range loaded {
			w, ok := want[got.Pos()]
			require.Truef(t, ok, "unexpected tile at %v", got.Pos())
			if diff := cmp.Diff(w.SaveData(), got.SaveData()); diff != "" {
				t.Errorf("tile at %v differs (-want +got):\n%v", got.Pos(), diff)
			}
			assert.Equal(t, w.Callable(), got.Callable())
		}
	})

	t.Run("Chunks", func(t *testing.T) {
		p := open(t)
		defer p.Close()
		require.NoError(t, world.SaveTiles(p, []*tile.Tile{
			Tile(t, tile.Info{Pos: tile.Pos{0, 0, 0}}),
			Tile(t, tile.Info{Pos: tile.Pos{-1, 0, 16}}),
		}))
		chunks, err := p.Chunks()
		require.NoError(t, err)
		assert.ElementsMatch(t, []world.ChunkPos{{0, 0}, {-1, 1}}, chunks)

		require.NoError(t, p.SaveBlockNBT(world.ChunkPos{0, 0}, nil))
		chunks, err = p.Chunks()
		require.NoError(t, err)
		assert.Equal(t, []world.ChunkPos{{-1, 1}}, chunks)

		data, err := p.LoadBlockNBT(world.ChunkPos{0, 0})
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("PlaceMerges", func(t *testing.T) {
		p := open(t)
		defer p.Close()
		require.NoError(t, world.PlaceTiles(p, []*tile.Tile{
			Tile(t, tile.Info{Pos: tile.Pos{1, 1, 1}, Data: map[string]interface{}{"v": 1}}),
			Tile(t, tile.Info{Pos: tile.Pos{2, 1, 1}, Data: map[string]interface{}{"v": 2}}),
		}))
		require.NoError(t, world.PlaceTiles(p, []*tile.Tile{
			Tile(t, tile.Info{Pos: tile.Pos{1, 1, 1}, Data: map[string]interface{}{"v": 3}}),
		}))
		loaded, err := world.LoadTiles(p, world.ChunkPos{0, 0})
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		got := map[tile.Pos]int32{}
		for _, tl := range loaded {
			v, err := tl.GetData("v", tag.Value{}).Int()
			require.NoError(t, err)
			got[tl.Pos()] = v
		}
		assert.Equal(t, map[tile.Pos]int32{{1, 1, 1}: 3, {2, 1, 1}: 2}, got)
	})

	t.Run("ReservedKeys", func(t *testing.T) {
		p := open(t)
		defer p.Close()
		plain := Tile(t, tile.Info{Pos: tile.Pos{1, 5, 1}, Data: map[string]interface{}{"v": 1}})
		require.ErrorIs(t, plain.SetData(tile.KeyCallable, "expire"), tile.ErrReservedKey)
		require.ErrorIs(t, plain.SetData(tile.KeyCallable, 5), tile.ErrReservedKey)
		require.ErrorIs(t, plain.SetData(tile.KeyY, "up"), tile.ErrBadPosition)
		moved := Tile(t, tile.Info{Pos: tile.Pos{2, 5, 1}})
		require.NoError(t, moved.SetData(tile.KeyX, 3))
		require.NoError(t, world.SaveTiles(p, []*tile.Tile{plain, moved}))

		// a callable written by another program as an int is plain data
		data, err := p.LoadBlockNBT(world.ChunkPos{0, 0})
		require.NoError(t, err)
		data = append(data, map[string]interface{}{
			"id": tile.DefaultID, "x": int32(4), "y": int32(5), "z": int32(1), tile.KeyCallable: int32(5),
		})
		require.NoError(t, p.SaveBlockNBT(world.ChunkPos{0, 0}, data))

		loaded, err := world.LoadAllTiles(p)
		require.NoError(t, err)
		require.Len(t, loaded, 3)
		byPos := map[tile.Pos]*tile.Tile{}
		for _, tl := range loaded {
			assert.Equal(t, "", tl.Callable())
			assert.False(t, tl.NeedsUpdate())
			byPos[tl.Pos()] = tl
		}
		require.Contains(t, byPos, tile.Pos{1, 5, 1})
		require.Contains(t, byPos, tile.Pos{3, 5, 1})
		require.Contains(t, byPos, tile.Pos{4, 5, 1})
		if diff := cmp.Diff(plain.SaveData(), byPos[tile.Pos{1, 5, 1}].SaveData()); diff != "" {
			t.Errorf("tile differs (-want +got):\n%v", diff)
		}
		assert.Equal(t, int32(5), byPos[tile.Pos{4, 5, 1}].SaveData()[tile.KeyCallable])

		require.NoError(t, world.SaveTiles(p, loaded))
		again, err := world.LoadAllTiles(p)
		require.NoError(t, err)
		assert.Len(t, again, 3)
	})

	t.Run("ForeignEntriesKept", func(t *testing.T) {
		p := open(t)
		defer p.Close()
		chest := map[string]interface{}{
			"id": "Chest", "x": int32(3), "y": int32(64), "z": int32(3),
			"Items": []map[string]interface{}{{"Slot": uint8(0), "Count": uint8(1), "Name": "minecraft:stone"}},
		}
		tl := Tile(t, tile.Info{Pos: tile.Pos{1, 64, 1}, Data: map[string]interface{}{"v": 1}})
		require.NoError(t, p.SaveBlockNBT(world.ChunkPos{0, 0}, []map[string]interface{}{chest, tl.SaveData()}))

		loaded, err := world.LoadTiles(p, world.ChunkPos{0, 0})
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		require.NoError(t, loaded[0].SetData("v", 2))
		require.NoError(t, world.SaveTiles(p, loaded))

		data, err := p.LoadBlockNBT(world.ChunkPos{0, 0})
		require.NoError(t, err)
		require.Len(t, data, 2)
		ids := []interface{}{data[0]["id"], data[1]["id"]}
		assert.ElementsMatch(t, []interface{}{"Chest", tile.DefaultID}, ids)
		for _, d := range data {
			if d["id"] == "Chest" {
				assert.Len(t, d["Items"], 1)
			}
		}

		// a tile placed where the chest is replaces it
		require.NoError(t, world.PlaceTiles(p, []*tile.Tile{Tile(t, tile.Info{Pos: tile.Pos{3, 64, 3}})}))
		data, err = p.LoadBlockNBT(world.ChunkPos{0, 0})
		require.NoError(t, err)
		require.Len(t, data, 2)
		for _, d := range data {
			assert.NotEqual(t, "Chest", d["id"])
		}
	})
}
