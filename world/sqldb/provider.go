package sqldb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/CMA2401PT/eztiles/world"
)

const schema = `CREATE TABLE IF NOT EXISTS block_entities (
	dim  INTEGER NOT NULL,
	x    INTEGER NOT NULL,
	z    INTEGER NOT NULL,
	data BLOB    NOT NULL,
	PRIMARY KEY (dim, x, z)
)`

// Provider stores the block entities of each chunk as one NBT blob in a SQLite database.
type Provider struct {
	DB  *sql.DB
	dim int32
}

// New opens, or creates, dir/tiles.sqlite.
func New(dir string, dim int32) (*Provider, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("error creating world directory: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dir, "tiles.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating block_entities table: %w", err)
	}
	return &Provider{DB: db, dim: dim}, nil
}

func (p *Provider) LoadBlockNBT(position world.ChunkPos) ([]map[string]interface{}, error) {
	var data []byte
	err := p.DB.QueryRow(`SELECT data FROM block_entities WHERE dim = ? AND x = ? AND z = ?`,
		p.dim, position.X(), position.Z()).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error reading block entities: %w", err)
	}
	return world.DecodeNBT(data, world.DefaultEncoding)
}

func (p *Provider) SaveBlockNBT(position world.ChunkPos, data []map[string]interface{}) error {
	if len(data) == 0 {
		_, err := p.DB.Exec(`DELETE FROM block_entities WHERE dim = ? AND x = ? AND z = ?`,
			p.dim, position.X(), position.Z())
		return err
	}
	b, err := world.EncodeNBT(data, world.DefaultEncoding)
	if err != nil {
		return err
	}
	_, err = p.DB.Exec(`INSERT OR REPLACE INTO block_entities (dim, x, z, data) VALUES (?, ?, ?, ?)`,
		p.dim, position.X(), position.Z(), b)
	if err != nil {
		return fmt.Errorf("error writing block entities: %w", err)
	}
	return nil
}

func (p *Provider) Chunks() ([]world.ChunkPos, error) {
	rows, err := p.DB.Query(`SELECT x, z FROM block_entities WHERE dim = ? ORDER BY x, z`, p.dim)
	if err != nil {
		return nil, fmt.Errorf("error listing chunks: %w", err)
	}
	defer rows.Close()
	var chunks []world.ChunkPos
	for rows.Next() {
		var c world.ChunkPos
		if err := rows.Scan(&c[0], &c[1]); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (p *Provider) Close() error {
	return p.DB.Close()
}
