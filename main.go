package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/lepinkainen/webpconv/cmd"
	"github.com/lepinkainen/webpconv/types"
)

var Version = "dev"

type CLI struct {
	Config  string           `help:"Path to a TOML config file" type:"path" placeholder:"FILE"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Convert    cmd.ConvertCmd    `cmd:"" default:"withargs" help:"Convert all images under a folder into <folder>_webp"`
	Batch      cmd.BatchCmd      `cmd:"" help:"Convert ./input_files into ./output_files"`
	Verify     cmd.VerifyCmd     `cmd:"" help:"Compare converted images with their sources"`
	Collisions cmd.CollisionsCmd `cmd:"" help:"List images that would overwrite each other's output"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("webpconv"),
		kong.Description("Convert folders of images to WebP with the libwebp cwebp encoder."),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&types.AppContext{Version: Version, ConfigPath: cli.Config})
	ctx.FatalIfErrorf(err)
}
