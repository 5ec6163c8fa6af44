package mcdb

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"

	"github.com/CMA2401PT/eztiles/world"
)

// keyBlockEntities is the key suffix block entities of a chunk are stored under.
const keyBlockEntities = '1'

// Provider stores block entities in a leveldb database laid out like a Bedrock world.
type Provider struct {
	DB  *leveldb.DB
	dim int32
	dir string
}

// New opens, or creates, the database under dir/db. Block entities are read and written for
// the dimension passed, 0 being the overworld.
func New(dir string, dim int32) (*Provider, error) {
	if err := os.MkdirAll(filepath.Join(dir, "db"), 0777); err != nil {
		return nil, fmt.Errorf("error creating world directory: %w", err)
	}
	db, err := leveldb.OpenFile(filepath.Join(dir, "db"), &opt.Options{
		Compression: opt.FlateCompression,
		BlockSize:   16 * opt.KiB,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening leveldb database: %w", err)
	}
	return &Provider{DB: db, dim: dim, dir: dir}, nil
}

// LoadBlockNBT loads all block entities from the chunk position passed.
func (p *Provider) LoadBlockNBT(position world.ChunkPos) ([]map[string]interface{}, error) {
	data, err := p.DB.Get(append(p.index(position), keyBlockEntities), nil)
	if err == leveldb.ErrNotFound {
		// Block entities aren't present when there aren't any.
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error reading block entities: %w", err)
	}
	return world.DecodeNBT(data, world.DefaultEncoding)
}

// SaveBlockNBT saves all block NBT data to the chunk position passed.
func (p *Provider) SaveBlockNBT(position world.ChunkPos, data []map[string]interface{}) error {
	if len(data) == 0 {
		return p.DB.Delete(append(p.index(position), keyBlockEntities), nil)
	}
	b, err := world.EncodeNBT(data, world.DefaultEncoding)
	if err != nil {
		return err
	}
	return p.DB.Put(append(p.index(position), keyBlockEntities), b, nil)
}

// Chunks returns every chunk of the dimension that has block entities stored.
func (p *Provider) Chunks() ([]world.ChunkPos, error) {
	keyLen := 9
	if p.dim != 0 {
		keyLen = 13
	}
	var chunks []world.ChunkPos
	iter := p.DB.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) != keyLen || key[keyLen-1] != keyBlockEntities {
			continue
		}
		if p.dim != 0 && int32(binary.LittleEndian.Uint32(key[8:])) != p.dim {
			continue
		}
		chunks = append(chunks, world.ChunkPos{
			int32(binary.LittleEndian.Uint32(key)),
			int32(binary.LittleEndian.Uint32(key[4:])),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error iterating leveldb database: %w", err)
	}
	return chunks, nil
}

// Close closes the database.
func (p *Provider) Close() error {
	return p.DB.Close()
}

// index returns a byte buffer holding the written index of the chunk position passed. If the dimension passed to New
// is not the overworld, the length of the index returned is 12. It is 8 otherwise.
func (p *Provider) index(position world.ChunkPos) []byte {
	x, z, dim := uint32(position[0]), uint32(position[1]), uint32(p.dim)
	b := make([]byte, 12)

	binary.LittleEndian.PutUint32(b, x)
	binary.LittleEndian.PutUint32(b[4:], z)
	if dim == 0 {
		return b[:8]
	}
	binary.LittleEndian.PutUint32(b[8:], dim)
	return b
}
