package cli

import (
	"fmt"

	"github.com/soyeahso/boardroom/internal/persona"
	"github.com/spf13/cobra"
)

func newPersonasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "personas",
		Aliases: []string{"board"},
		Short:   "Inspect the board of executive personas",
	}

	cmd.AddCommand(newPersonasListCmd())
	cmd.AddCommand(newPersonasInfoCmd())
	return cmd
}

func newPersonasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List personas in speaking order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for i, def := range persona.Default().All() {
				fmt.Fprintf(out, "%d. %-8s %s %-16s %s\n", i+1, def.ID, def.Archetype.Icon(), def.Name, def.Role)
			}
		},
	}
}

func newPersonasInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show a persona's role and instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := persona.Default().ByID(args[0])
			if err != nil {
				return fmt.Errorf("%w (known: %v)", err, persona.Default().IDs())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", def.ID)
			fmt.Fprintf(out, "Name:      %s\n", def.Name)
			fmt.Fprintf(out, "Role:      %s\n", def.Role)
			fmt.Fprintf(out, "Archetype: %s %s\n", def.Archetype.Icon(), def.Archetype.Label())
			fmt.Fprintf(out, "\n%s\n", def.Instruction)
			return nil
		},
	}
}
