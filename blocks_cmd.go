package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/stagekit/blocks"
)

var flagBlocksYAML bool

var blocksCmd = &cobra.Command{
	Use:   "blocks [extension]",
	Short: "List extension blocks and menus",
	Long: `Print the blocks every extension registers, with their argument names
and menus. Scripts call a block as engine.<extension>.<opcode>({ARG: value}).

Examples:
  stagekit blocks
  stagekit blocks nkmoremotion
  stagekit blocks --yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBlocks,
}

func init() {
	blocksCmd.Flags().BoolVar(&flagBlocksYAML, "yaml", false, "Print the listing as YAML")
}

type extensionListing struct {
	ID     string              `yaml:"id"`
	Name   string              `yaml:"name"`
	Blocks []blockListing      `yaml:"blocks"`
	Menus  map[string][]string `yaml:"menus"`
}

type blockListing struct {
	Opcode    string   `yaml:"opcode"`
	Type      string   `yaml:"type"`
	Text      string   `yaml:"text"`
	Arguments []string `yaml:"arguments,omitempty"`
	Sprites   bool     `yaml:"sprite_only,omitempty"`
}

func runBlocks(cmd *cobra.Command, args []string) error {
	s, err := newSession(logger, flagPackaged, nil)
	if err != nil {
		return err
	}

	var listings []extensionListing
	for _, info := range s.registry.Extensions() {
		if len(args) > 0 && args[0] != info.ID {
			continue
		}
		listings = append(listings, listExtension(s.registry, info))
	}
	if len(args) > 0 && len(listings) == 0 {
		return fmt.Errorf("%w: %s", blocks.ErrUnknownExtension, args[0])
	}

	out := cmd.OutOrStdout()
	if flagBlocksYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(listings)
	}

	for _, l := range listings {
		fmt.Fprintf(out, "%s (%s)\n", l.Name, l.ID)
		for _, b := range l.Blocks {
			if b.Type == string(blocks.Label) {
				fmt.Fprintf(out, "  -- %s\n", b.Text)
				continue
			}
			fmt.Fprintf(out, "  %-28s %-9s %s\n", b.Opcode, b.Type, strings.Join(b.Arguments, " "))
		}
		names := make([]string, 0, len(l.Menus))
		for name := range l.Menus {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  menu %-23s %s\n", name, strings.Join(l.Menus[name], ", "))
		}
	}
	return nil
}

func listExtension(reg *blocks.Registry, info blocks.Info) extensionListing {
	l := extensionListing{ID: info.ID, Name: info.Name, Menus: map[string][]string{}}
	for _, b := range info.Blocks {
		bl := blockListing{Opcode: b.Opcode, Type: string(b.Type), Text: b.Text}
		for name, arg := range b.Arguments {
			if arg.Menu != "" {
				bl.Arguments = append(bl.Arguments, name+"="+arg.Menu)
				continue
			}
			bl.Arguments = append(bl.Arguments, name)
		}
		sort.Strings(bl.Arguments)
		bl.Sprites = len(b.Filter) == 1 && b.Filter[0] == blocks.Sprite
		l.Blocks = append(l.Blocks, bl)
	}
	for _, name := range reg.MenuNames(info.ID) {
		items, err := reg.MenuItems(info.ID, name)
		if err != nil {
			continue
		}
		l.Menus[name] = blocks.Values(items)
	}
	return l
}
