package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/lepinkainen/webpconv/types"
	"github.com/lepinkainen/webpconv/ui"
	"github.com/lepinkainen/webpconv/webp"
)

// CollisionsCmd lists images that would be written to the same output file
// because they share a base name in different subfolders
type CollisionsCmd struct {
	InputFolder string `arg:"" name:"input_folder" help:"Folder to scan for images" type:"existingdir" default:"."`
}

func (cmd *CollisionsCmd) Run(appCtx *types.AppContext) error {
	fmt.Fprintln(stdout, ui.HeaderStyle.Render(fmt.Sprintf("WebP Converter %s", appCtx.VersionOrDefault())))
	fmt.Fprintf(stdout, "Scanning %s for output collisions...\n", cmd.InputFolder)

	cfg, err := loadConfig(appCtx)
	if err != nil {
		return err
	}

	files, err := webp.FindImageFilesRecursively(cmd.InputFolder, cfg.Extensions)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cmd.InputFolder, err)
	}

	collisions := webp.FindCollisions(webp.BuildTasks(files, "", 0))
	if len(collisions) == 0 {
		fmt.Fprintf(stdout, "%s\n", ui.SuccessStyle.Render("✅ No collisions found"))
		return nil
	}

	names := make([]string, 0, len(collisions))
	for dest := range collisions {
		names = append(names, dest)
	}
	sort.Strings(names)

	fmt.Fprintf(stdout, "\n%s\n", ui.WarningStyle.Render(fmt.Sprintf("Found %d output name(s) shared by several images:", len(collisions))))
	for _, name := range names {
		sources := collisions[name]
		fmt.Fprintf(stdout, "\n🔸 %s (%d files, last one converted wins):\n", filepath.Base(name), len(sources))
		for _, src := range sources {
			fmt.Fprintf(stdout, "  %s\n", src)
		}
	}
	return nil
}
