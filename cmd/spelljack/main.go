package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `kong:"default='spelljack.hcl',type='path',help='Configuration file'"`
	Profile  string `kong:"default='default',help='Session profile name'"`
	LogLevel string `kong:"name='log-level',help='Override the configured log level'"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play interactively in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Autoplay seeded rounds and report statistics"`
	Shop     ShopCmd          `cmd:"" help:"Browse and buy cards"`
	Deck     DeckCmd          `cmd:"" help:"Edit the play deck and special loadout"`
	Catalog  CatalogCmd       `cmd:"" help:"List every special card"`
	Profiles ProfilesCmd      `cmd:"" help:"List saved profiles (sqlite storage)"`
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("spelljack"),
		kong.Description("Blackjack with spells: special cards, suit multipliers and a moving target"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
