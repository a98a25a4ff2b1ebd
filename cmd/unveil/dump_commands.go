package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"unveil/internal/dump"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Recognition dump utilities",
	}

	dumpCmd.AddCommand(newDumpListCommand(ctx))
	dumpCmd.AddCommand(newDumpInspectCommand(ctx))

	return dumpCmd
}

func newDumpListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recognition dumps, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			matches, err := filepath.Glob(filepath.Join(cfg.Paths.DumpDir, "recognition_*.toml"))
			if err != nil {
				return fmt.Errorf("scan dump directory: %w", err)
			}
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No recognition dumps in %s\n", cfg.Paths.DumpDir)
				return nil
			}
			sort.Strings(matches)
			for _, match := range matches {
				fmt.Fprintln(cmd.OutOrStdout(), match)
			}
			return nil
		},
	}
}

func newDumpInspectCommand(ctx *commandContext) *cobra.Command {
	var titleCase bool

	cmd := &cobra.Command{
		Use:   "inspect [dump-file]",
		Short: "Show the seat assignments stored in a recognition dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				path, err = latestDump(cfg.Paths.DumpDir)
				if err != nil {
					return err
				}
			}

			lookup, err := dump.Read(path)
			if err != nil {
				return err
			}

			caser := cases.Title(language.English)
			handIDs := make([]string, 0, len(lookup))
			for handID := range lookup {
				handIDs = append(handIDs, handID)
			}
			sort.Strings(handIDs)

			rows := make([][]string, 0, len(handIDs))
			for _, handID := range handIDs {
				seats := lookup[handID]
				numbers := make([]int, 0, len(seats))
				for seat := range seats {
					numbers = append(numbers, seat)
				}
				sort.Ints(numbers)
				for _, seat := range numbers {
					name := seats[seat]
					if name == "" {
						name = "(empty)"
					} else if titleCase {
						name = caser.String(strings.ToLower(name))
					}
					rows = append(rows, []string{handID, strconv.Itoa(seat), name})
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dump: %s (%d hands)\n", path, len(handIDs))
			fmt.Fprintln(out, renderTable([]string{"Hand", "Seat", "Player"}, rows, 2))
			return nil
		},
	}

	cmd.Flags().BoolVar(&titleCase, "title-case", false, "Normalize recognized names to title case for display")
	return cmd
}
