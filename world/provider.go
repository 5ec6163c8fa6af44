package world

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/CMA2401PT/eztiles/tile"
)

// ChunkPos holds the x and z coordinates of a chunk.
type ChunkPos [2]int32

func (p ChunkPos) X() int32 { return p[0] }
func (p ChunkPos) Z() int32 { return p[1] }

// ChunkPosOf returns the chunk a block position lies in.
func ChunkPosOf(pos tile.Pos) ChunkPos {
	return ChunkPos{int32(pos[0] >> 4), int32(pos[2] >> 4)}
}

// DefaultEncoding is the encoding block entities are stored with on disk.
var DefaultEncoding nbt.Encoding = nbt.LittleEndian

// Provider persists the block entity trees of a world, per chunk.
type Provider interface {
	// LoadBlockNBT loads all block entities of a chunk. A chunk without any returns nil.
	LoadBlockNBT(pos ChunkPos) ([]map[string]interface{}, error)
	// SaveBlockNBT replaces all block entities of a chunk. Saving none deletes them.
	SaveBlockNBT(pos ChunkPos, data []map[string]interface{}) error
	// Chunks returns every chunk holding block entities.
	Chunks() ([]ChunkPos, error)
	Close() error
}

// EncodeNBT writes the trees passed one after another, the layout block entities are stored
// with on disk.
func EncodeNBT(data []map[string]interface{}, encoding nbt.Encoding) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	enc := nbt.NewEncoderWithEncoding(buf, encoding)
	for _, d := range data {
		if err := enc.Encode(d); err != nil {
			return nil, fmt.Errorf("error encoding block NBT: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeNBT reads back the trees written by EncodeNBT.
func DecodeNBT(data []byte, encoding nbt.Encoding) ([]map[string]interface{}, error) {
	var a []map[string]interface{}
	buf := bytes.NewBuffer(data)
	dec := nbt.NewDecoderWithEncoding(buf, encoding)
	for buf.Len() != 0 {
		var m map[string]interface{}
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("error decoding block NBT: %w", err)
		}
		a = append(a, m)
	}
	return a, nil
}

func groupByChunk(tiles []*tile.Tile) (map[ChunkPos][]*tile.Tile, []ChunkPos) {
	chunks := make(map[ChunkPos][]*tile.Tile)
	var order []ChunkPos
	for _, t := range tiles {
		c := ChunkPosOf(t.Pos())
		if _, ok := chunks[c]; !ok {
			order = append(order, c)
		}
		chunks[c] = append(chunks[c], t)
	}
	sortChunks(order)
	return chunks, order
}

func sortChunks(c []ChunkPos) {
	sort.Slice(c, func(i, j int) bool {
		if c[i][0] != c[j][0] {
			return c[i][0] < c[j][0]
		}
		return c[i][1] < c[j][1]
	})
}

// SaveTiles saves the tiles passed, replacing the tiles stored in the chunks they lie in.
// Other block entities of those chunks are kept unless a saved tile takes their position.
func SaveTiles(p Provider, tiles []*tile.Tile) error {
	chunks, order := groupByChunk(tiles)
	for _, c := range order {
		_, foreign, err := loadChunk(p, c)
		if err != nil {
			return err
		}
		taken := make(map[tile.Pos]bool, len(chunks[c]))
		for _, t := range chunks[c] {
			taken[t.Pos()] = true
		}
		data := make([]map[string]interface{}, 0, len(foreign)+len(chunks[c]))
		for _, d := range foreign {
			if pos, ok := entryPos(d); ok && taken[pos] {
				continue
			}
			data = append(data, d)
		}
		for _, t := range chunks[c] {
			data = append(data, t.SaveData())
		}
		if err := p.SaveBlockNBT(c, data); err != nil {
			return fmt.Errorf("save tiles of chunk %v: %w", c, err)
		}
	}
	return nil
}

// PlaceTiles adds the tiles passed to the ones already stored, replacing stored tiles at the
// same positions.
func PlaceTiles(p Provider, tiles []*tile.Tile) error {
	chunks, order := groupByChunk(tiles)
	for _, c := range order {
		existing, err := LoadTiles(p, c)
		if err != nil {
			return err
		}
		byPos := make(map[tile.Pos]int)
		for i, t := range existing {
			byPos[t.Pos()] = i
		}
		for _, t := range chunks[c] {
			if i, ok := byPos[t.Pos()]; ok {
				existing[i] = t
				continue
			}
			byPos[t.Pos()] = len(existing)
			existing = append(existing, t)
		}
		if err := SaveTiles(p, existing); err != nil {
			return err
		}
	}
	return nil
}

// LoadTiles restores the tiles stored in a chunk. Block entities that do not restore as
// tiles, such as chests written by the game, are skipped.
func LoadTiles(p Provider, c ChunkPos) ([]*tile.Tile, error) {
	tiles, _, err := loadChunk(p, c)
	return tiles, err
}

// loadChunk splits the block entities of a chunk into tiles and foreign entries.
func loadChunk(p Provider, c ChunkPos) ([]*tile.Tile, []map[string]interface{}, error) {
	data, err := p.LoadBlockNBT(c)
	if err != nil {
		return nil, nil, fmt.Errorf("load tiles of chunk %v: %w", c, err)
	}
	tiles := make([]*tile.Tile, 0, len(data))
	var foreign []map[string]interface{}
	for _, d := range data {
		t, err := tile.Restore(d)
		if err != nil {
			foreign = append(foreign, d)
			continue
		}
		tiles = append(tiles, t)
	}
	return tiles, foreign, nil
}

// entryPos reads the position of a block entity tree.
func entryPos(d map[string]interface{}) (tile.Pos, bool) {
	var pos tile.Pos
	for i, k := range []string{tile.KeyX, tile.KeyY, tile.KeyZ} {
		v, ok := d[k].(int32)
		if !ok {
			return pos, false
		}
		pos[i] = int(v)
	}
	return pos, true
}

// LoadAllTiles restores the tiles of every chunk, ordered by chunk.
func LoadAllTiles(p Provider) ([]*tile.Tile, error) {
	chunks, err := p.Chunks()
	if err != nil {
		return nil, err
	}
	sortChunks(chunks)
	var all []*tile.Tile
	for _, c := range chunks {
		tiles, err := LoadTiles(p, c)
		if err != nil {
			return nil, err
		}
		all = append(all, tiles...)
	}
	return all, nil
}
