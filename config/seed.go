package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/muhammadmuzzammil1998/jsonc"

	"github.com/CMA2401PT/eztiles/tile"
)

// SeedTile is one tile of a seed file.
type SeedTile struct {
	Pos            [3]int                 `json:"pos"`
	Callable       string                 `json:"callable"`
	ScheduleUpdate bool                   `json:"schedule_update"`
	Data           map[string]interface{} `json:"data"`
}

type seedFile struct {
	Tiles []SeedTile `json:"tiles"`
}

// ParseSeed parses a JSON with comments seed file. Numbers are kept as json.Number so that
// their kind is decided by the tag codec rather than by encoding/json.
func ParseSeed(data []byte) ([]tile.Info, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	infos := make([]tile.Info, 0, len(f.Tiles))
	for _, t := range f.Tiles {
		infos = append(infos, tile.Info{
			Pos:            tile.Pos(t.Pos),
			Data:           t.Data,
			Callable:       t.Callable,
			ScheduleUpdate: t.ScheduleUpdate,
		})
	}
	return infos, nil
}

// LoadSeed reads and parses the seed file at path.
func LoadSeed(path string) ([]tile.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %v: %w", path, err)
	}
	return ParseSeed(data)
}
