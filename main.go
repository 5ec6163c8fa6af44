package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"golang.org/x/term"

	"github.com/CMA2401PT/eztiles/config"
	"github.com/CMA2401PT/eztiles/plugins"
	"github.com/CMA2401PT/eztiles/task"
	"github.com/CMA2401PT/eztiles/tile"
	"github.com/CMA2401PT/eztiles/world"
	"github.com/CMA2401PT/eztiles/world/mcdb"
	"github.com/CMA2401PT/eztiles/world/sqldb"
)

var argConfigFile = flag.String("c", "", "config file path")

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [-c config.yaml] <place|dump|tick [n]|export file>\n", os.Args[0])
	flag.PrintDefaults()
}

func openProvider(c *config.Config) (world.Provider, error) {
	switch c.Backend {
	case config.BackendSQLite:
		return sqldb.New(c.WorldDir, c.Dimension)
	default:
		return mcdb.New(c.WorldDir, c.Dimension)
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	color.NoColor = color.NoColor || !term.IsTerminal(int(os.Stdout.Fd()))

	color.Blue("Loading Config...")
	conf, err := config.Load(*argConfigFile)
	if err != nil {
		panic(fmt.Sprintf("Main: Error at loading config (%v)", err))
	}
	provider, err := openProvider(conf)
	if err != nil {
		panic(fmt.Sprintf("Main: Open world %v (%v) fail (%v)", conf.WorldDir, conf.Backend, err))
	}
	defer provider.Close()
	color.Green("World %v Opened!", conf.WorldDir)

	switch args[0] {
	case "place":
		err = place(provider, conf.SeedFile)
	case "dump":
		err = dump(provider)
	case "tick":
		n := 0
		if len(args) > 1 {
			if n, err = strconv.Atoi(args[1]); err != nil {
				break
			}
		}
		err = tick(provider, conf, n)
	case "export":
		if len(args) < 2 {
			err = errors.New("export needs an output file")
			break
		}
		err = export(provider, args[1])
	default:
		err = fmt.Errorf("unknown command %q", args[0])
	}
	if err != nil {
		fmt.Println(color.New(color.FgRed).Sprintf("Main: %v fail (%v)", args[0], err))
		provider.Close()
		os.Exit(1)
	}
}

func place(p world.Provider, seedFile string) error {
	infos, err := config.LoadSeed(seedFile)
	if err != nil {
		return err
	}
	tiles := make([]*tile.Tile, 0, len(infos))
	for _, info := range infos {
		t, err := tile.New(info)
		if err != nil {
			return err
		}
		tiles = append(tiles, t)
	}
	if err := world.PlaceTiles(p, tiles); err != nil {
		return err
	}
	color.Green("Place: %v tiles placed from %v", len(tiles), seedFile)
	return nil
}

func dump(p world.Provider) error {
	tiles, err := world.LoadAllTiles(p)
	if err != nil {
		return err
	}
	for _, t := range tiles {
		c := t.Pos().Vec3Centre()
		color.Cyan("%v at %v (centre %.1f, %.1f, %.1f) callable=%q", t.ID(), t.Pos(), c.X(), c.Y(), c.Z(), t.Callable())
		for _, k := range t.Store().Keys() {
			v, _ := t.Store().Lookup(k)
			fmt.Printf("  %v: %v\n", k, v)
		}
	}
	fmt.Printf("Dump: %v tiles\n", len(tiles))
	return nil
}

// tick runs n ticks over every stored tile, or ticks until interrupted when n is 0, and
// saves the tiles back afterwards.
func tick(p world.Provider, conf *config.Config, n int) error {
	reg := tile.NewRegistry()
	if err := plugins.RegisterAll(reg); err != nil {
		return err
	}
	tiles, err := world.LoadAllTiles(p)
	if err != nil {
		return err
	}
	s := task.NewScheduler(reg)
	s.Add(tiles...)
	color.Blue("Tick: %v of %v tiles scheduled", s.Len(), len(tiles))

	if n > 0 {
		for i := 0; i < n && s.Len() > 0; i++ {
			// failures were already reported through OnDrop
			_ = s.Tick()
		}
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err := s.Run(ctx, conf.Interval())
		stop()
		if !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Println("Tick: Interrupted, saving tiles")
	}
	if err := world.SaveTiles(p, tiles); err != nil {
		return err
	}
	color.Green("Tick: %v ticks done, %v tiles saved", s.Ticks(), len(tiles))
	return nil
}

// export writes every tile into a gzip compressed, big endian NBT file.
func export(p world.Provider, file string) error {
	tiles, err := world.LoadAllTiles(p)
	if err != nil {
		return err
	}
	list := make([]map[string]interface{}, 0, len(tiles))
	for _, t := range tiles {
		list = append(list, t.SaveData())
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	if err := nbt.NewEncoderWithEncoding(gz, nbt.BigEndian).Encode(map[string]interface{}{"tiles": list}); err != nil {
		return fmt.Errorf("error encoding tiles: %w", err)
	}
	if err := gz.Close(); err != nil {
		return err
	}
	color.Green("Export: %v tiles written to %v", len(tiles), file)
	return f.Close()
}
