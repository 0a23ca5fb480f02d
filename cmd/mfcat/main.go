package main

import (
	"context"
	"fmt"
	"os"

	"mfcatalog/internal/cli"
	"mfcatalog/internal/config"
	"mfcatalog/internal/core/logger"
	"mfcatalog/internal/core/types"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type Globals struct {
	ConfigFile string `short:"c" long:"config" help:"Path to config file"`
	Catalog    string `long:"catalog" help:"Catalog database, absolute or relative to the configured base directory"`
	Debug      bool   `short:"d" long:"debug" help:"Enable debug logging"`
}

// load resolves the configuration for one command and sets up logging.
func (g *Globals) load() (*types.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(config.ResolveConfigPath(g.ConfigFile))
	if err != nil {
		return nil, nil, err
	}
	if g.Catalog != "" {
		cfg.Store.Catalog = g.Catalog
	}
	if g.Debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefaultLevel(level)
	return cfg, logger.NewLogger(logger.WithName("mfcat")), nil
}

// run opens the catalog, hands it to fn and closes it again.
func (g *Globals) run(fn func(ctx context.Context, app *cli.App) error) error {
	cfg, log, err := g.load()
	if err != nil {
		return err
	}
	ctx, cancel := types.DefaultSignalNotifySubContext()
	defer cancel()

	app, err := cli.Open(ctx, cfg, cli.WithLogger(log))
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)
	if err := app.Close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

type InitCmd struct{}

type DropCmd struct{}

type ListCmd struct {
	Pattern string `arg:"" optional:"" help:"Dataset name pattern, * matches any suffix (default: all)"`
}

type FindCmd struct {
	Dataset string `arg:"" help:"Dataset name"`
}

type MembersCmd struct {
	Dataset string `arg:"" help:"Partitioned dataset name"`
	Pattern string `arg:"" optional:"" help:"Member name pattern (default: all)"`
}

type DeleteCmd struct {
	Dataset string `arg:"" help:"Dataset name"`
	Member  string `arg:"" optional:"" help:"Member name; the whole dataset is deleted when omitted"`
}

type ImportCmd struct {
	Listing    string `arg:"" type:"existingfile" help:"YAML listing of datasets and members"`
	NoProgress bool   `long:"no-progress" help:"Do not draw a progress bar"`
}

type ConfigCmd struct {
	Save string `long:"save" placeholder:"FILE" help:"Write the effective configuration to FILE"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" long:"version" help:"Print version and exit"`
	Init    InitCmd          `cmd:"init" help:"Create an empty catalog, discarding existing entries"`
	Drop    DropCmd          `cmd:"drop" help:"Remove the catalog tables"`
	List    ListCmd          `cmd:"list" help:"List datasets"`
	Find    FindCmd          `cmd:"find" help:"Show one dataset"`
	Members MembersCmd       `cmd:"members" help:"List the members of a partitioned dataset"`
	Delete  DeleteCmd        `cmd:"delete" help:"Delete a dataset or a member"`
	Import  ImportCmd        `cmd:"import" help:"Update the catalog from a YAML listing"`
	Config  ConfigCmd        `cmd:"config" help:"Show the effective configuration"`
}

func (c *InitCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		return app.Init(ctx)
	})
}

func (c *DropCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		return app.Drop(ctx)
	})
}

func (c *ListCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		return app.List(ctx, c.Pattern)
	})
}

func (c *FindCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		return app.Find(ctx, c.Dataset)
	})
}

func (c *MembersCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		return app.Members(ctx, c.Dataset, c.Pattern)
	})
}

func (c *DeleteCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		return app.Delete(ctx, c.Dataset, c.Member)
	})
}

func (c *ImportCmd) Run(g *Globals) error {
	return g.run(func(ctx context.Context, app *cli.App) error {
		var opts []cli.ImportOption
		if !c.NoProgress {
			opts = append(opts, cli.WithProgress(os.Stderr))
		}
		_, err := app.Import(ctx, c.Listing, opts...)
		return err
	})
}

func (c *ConfigCmd) Run(g *Globals) error {
	cfg, _, err := g.load()
	if err != nil {
		return err
	}
	if c.Save != "" {
		if err := config.SaveConfig(types.ExpandHome(c.Save), cfg); err != nil {
			return err
		}
		fmt.Printf("Configuration saved to %s\n", c.Save)
		return nil
	}
	data, err := yaml.MarshalWithOptions(cfg, yaml.Indent(2))
	if err != nil {
		return err
	}
	fmt.Printf("# catalog: %s\n%s", cfg.Store.Path(), data)
	return nil
}

func main() {
	var cliRoot CLI
	kctx := kong.Parse(
		&cliRoot,
		kong.Vars{
			"version": "0.1.0",
		},
		kong.Name("mfcat"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Description("mfcat - catalog of mainframe datasets and members"),
	)
	err := kctx.Run(&cliRoot.Globals)
	kctx.FatalIfErrorf(err)
}
