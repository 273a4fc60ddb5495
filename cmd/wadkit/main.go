package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	wad "github.com/stuarthighley/wadkit"
)

var CLI struct {
	Debug   bool     `help:"Whether to enable debug logging."`
	IWAD    string   `help:"Base WAD file." name:"iwad" required:"" type:"existingfile"`
	PWAD    []string `help:"Override WAD files, applied in order." name:"pwad" type:"existingfile"`
	Palette int      `help:"PLAYPAL palette to render with." default:"0"`

	Lumps struct {
	} `cmd:"" help:"List the lumps of every loaded WAD."`

	Levels struct {
	} `cmd:"" help:"List level names."`

	Locate struct {
		Level string  `arg:"" help:"Level name, e.g. E1M1."`
		X     float32 `arg:""`
		Y     float32 `arg:""`
	} `cmd:"" help:"Find the subsector and sector holding a point."`

	Tree struct {
		Level string `arg:"" help:"Level name, e.g. E1M1."`
	} `cmd:"" help:"Print a level's BSP tree."`

	Export struct {
		Out string `help:"Output directory." default:"export" type:"path"`
	} `cmd:"" help:"Write textures, flats and sprite sheets as PNG."`

	Geometry struct {
		Level string `arg:"" help:"Level name, e.g. E1M1."`
		Out   string `help:"Output file, standard output if empty." type:"path"`
	} `cmd:"" help:"Write a level's wall geometry as CBOR."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func loadGroup() (*wad.Group, error) {
	group := wad.NewGroup()
	for _, path := range append([]string{CLI.IWAD}, CLI.PWAD...) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := group.Load(filepath.Base(path), data); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// consoleWriter keeps stdout free for command output.
func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

func main() {
	log.Logger = log.Output(consoleWriter())

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("wadkit"),
		kong.Description("inspect and export Doom WAD files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}
	wad.SetLogger(log.Logger)

	group, err := loadGroup()
	if err != nil {
		writeError(err)
	}

	switch ctx.Command() {
	case "lumps":
		for _, l := range group.Lumps() {
			fmt.Printf("%5d %-8s %8d %8d\n", l.Index, l.Name, l.Offset, l.Size)
		}
	case "levels":
		for _, name := range group.LevelNames() {
			fmt.Println(name)
		}
	case "locate <level> <x> <y>":
		err = locateCommand(group)
	case "tree <level>":
		err = treeCommand(group)
	case "export":
		err = exportCommand(group)
	case "geometry <level>":
		err = geometryCommand(group)
	}
	if err != nil {
		writeError(err)
	}
}

func locateCommand(group *wad.Group) error {
	level, err := group.Level(CLI.Locate.Level)
	if err != nil {
		return err
	}
	ss, err := level.PointLocate(CLI.Locate.X, CLI.Locate.Y)
	if err != nil {
		return err
	}
	sector, err := level.SectorAt(CLI.Locate.X, CLI.Locate.Y)
	if err != nil {
		return err
	}
	fmt.Printf("subsector %d, sector %d (floor %d, ceiling %d, light %d)\n",
		ss.Index, sector.Index, sector.FloorHeight, sector.CeilingHeight, sector.LightLevel)
	return nil
}

func treeCommand(group *wad.Group) error {
	level, err := group.Level(CLI.Tree.Level)
	if err != nil {
		return err
	}
	return wad.PrintTree(os.Stdout, level)
}

func geometryCommand(group *wad.Group) error {
	level, err := group.Level(CLI.Geometry.Level)
	if err != nil {
		return err
	}
	groups, err := level.BuildWallGeometry()
	if err != nil {
		return err
	}
	for _, w := range level.Warnings() {
		log.Warn().Err(w).Msg("level")
	}
	data, err := wad.EncodeGeometry(groups)
	if err != nil {
		return err
	}
	if CLI.Geometry.Out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(CLI.Geometry.Out, data, 0o644)
}

func exportCommand(group *wad.Group) error {
	pal, err := group.Palette(CLI.Palette)
	if err != nil {
		return err
	}
	for _, dir := range []string{"textures", "flats", "sprites"} {
		if err := os.MkdirAll(filepath.Join(CLI.Export.Out, dir), 0o755); err != nil {
			return err
		}
	}

	textures, err := group.Textures()
	if err != nil {
		return err
	}
	for name, t := range textures {
		if err := writePNG(filepath.Join(CLI.Export.Out, "textures", name+".png"), t.Image(pal)); err != nil {
			return err
		}
	}

	flats, err := group.Flats()
	if err != nil {
		return err
	}
	for name, f := range flats {
		img := f.Image(pal)
		if img == nil {
			continue
		}
		if err := writePNG(filepath.Join(CLI.Export.Out, "flats", name+".png"), img); err != nil {
			return err
		}
	}

	sprites, err := group.Sprites()
	if err != nil {
		return err
	}
	for name, s := range sprites {
		sheet, err := s.Sheet()
		if err != nil {
			return err
		}
		base := filepath.Join(CLI.Export.Out, "sprites", name)
		if err := writePNG(base+".png", sheet.Image(pal)); err != nil {
			return err
		}
		index, err := sheet.EncodeIndex()
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".cbor", index, 0o644); err != nil {
			return err
		}
	}
	log.Info().
		Int("textures", len(textures)).
		Int("flats", len(flats)).
		Int("sprites", len(sprites)).
		Str("out", CLI.Export.Out).
		Msg("exported")
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
