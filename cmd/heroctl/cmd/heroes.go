package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"heroes/internal/model"
)

var (
	idStyle   = lipgloss.NewStyle().Bold(true).Width(5).Align(lipgloss.Right)
	noneStyle = lipgloss.NewStyle().Faint(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all heroes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeroes(cmd.OutOrStdout(), sess.gw.List(cmd.Context()))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one hero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		printHero(cmd.OutOrStdout(), sess.gw.Get(cmd.Context(), id))
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a hero",
	Long: `Creates a hero. The API assigns the id.

Examples:
  heroctl add Zantar
  heroctl add "Dr Nice Jr"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := model.HeroInput{Name: strings.Join(args, " ")}
		printHero(cmd.OutOrStdout(), sess.gw.Add(cmd.Context(), in))
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Rename a hero",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		h := model.Hero{ID: id, Name: strings.Join(args[1:], " ")}
		printHero(cmd.OutOrStdout(), sess.gw.Update(cmd.Context(), h))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a hero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		printHero(cmd.OutOrStdout(), sess.gw.Delete(cmd.Context(), model.HeroID(id)))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find heroes whose name contains term",
	Long: `Finds heroes whose name contains term, ignoring case.

Examples:
  heroctl search bom
  heroctl search "dr "`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printHeroes(cmd.OutOrStdout(), sess.gw.Search(cmd.Context(), strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, getCmd, addCmd, updateCmd, deleteCmd, searchCmd)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid hero id %q", s)
	}
	return id, nil
}

func printHeroes(w io.Writer, heroes []model.Hero) {
	if len(heroes) == 0 {
		fmt.Fprintln(w, noneStyle.Render("(none)"))
		return
	}
	for _, h := range heroes {
		fmt.Fprintf(w, "%s  %s\n", idStyle.Render(strconv.Itoa(h.ID)), h.Name)
	}
}

func printHero(w io.Writer, h *model.Hero) {
	if h == nil {
		printHeroes(w, nil)
		return
	}
	printHeroes(w, []model.Hero{*h})
}
