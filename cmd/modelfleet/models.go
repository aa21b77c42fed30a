package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	serverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List discovered models",
	Long:  `Query every configured server's model listing and print the discovered models with their identifiers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := buildSession(cmd.Context())
		if err != nil {
			return err
		}

		models := sess.AvailableModels()
		if len(models) == 0 {
			fmt.Println("No models discovered.")
			return nil
		}

		current, _ := sess.CurrentModel()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t\n",
			headerStyle.Render("ID"), headerStyle.Render("MODEL"), headerStyle.Render("SERVER"))
		for _, m := range models {
			name := nameStyle.Render(m.Name)
			if m.ID == current.ID {
				name = selectedStyle.Render(m.Name + " *")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t\n",
				idStyle.Render(fmt.Sprintf("%d", m.ID)), name, serverStyle.Render(m.Server))
		}
		return w.Flush()
	},
}
