package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/jask/mapmark/internal/config"
	"github.com/jask/mapmark/internal/input"
	"github.com/jask/mapmark/internal/logging"
	"github.com/jask/mapmark/internal/mapview"
	"github.com/jask/mapmark/internal/marker"
	"github.com/jask/mapmark/internal/tui"
)

func main() {
	initConfig := flag.Bool("init-config", false, "write the default config file and exit")
	imagePath := flag.String("image", "", "map image to load (overrides map.image)")
	flag.Parse()

	if *initConfig {
		path := config.Path()
		wrote, err := config.WriteDefault(path)
		if err != nil {
			log.Fatalf("init config: %v", err)
		}
		if wrote {
			fmt.Println("wrote", path)
		} else {
			fmt.Println("config already exists:", path)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *imagePath != "" {
		cfg.Map.Image = *imagePath
	}

	logger, closer, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()
	logger.Info().Str("image", cfg.Map.Image).Msg("starting")

	colors := lo.SliceToMap(cfg.Palette, func(p config.PaletteColor) (marker.Color, lipgloss.Color) {
		return marker.Color(p.Name), lipgloss.Color(p.Hex)
	})
	swatches := lo.Map(cfg.Palette, func(p config.PaletteColor, _ int) input.Swatch {
		return input.Swatch{Color: marker.Color(p.Name), Key: p.Key}
	})

	surface := mapview.New(mapview.Options{MinZoom: cfg.Map.MinZoom, MaxZoom: cfg.Map.MaxZoom}, colors, logger)
	store := marker.NewStore(surface, logger)
	ctrl, err := input.New(store, surface, swatches, marker.Color(cfg.UI.DefaultColor), logger)
	if err != nil {
		log.Fatalf("controller: %v", err)
	}

	app := tui.New(ctrl, surface, tui.Options{
		ImagePath:    cfg.Map.Image,
		Bounds:       mapview.Bounds{Width: cfg.Map.Width, Height: cfg.Map.Height},
		SidebarWidth: cfg.UI.SidebarWidth,
		Colors:       colors,
	}, logger)

	p := tea.NewProgram(app, tui.ProgramOptions()...)
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("program exited")
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
