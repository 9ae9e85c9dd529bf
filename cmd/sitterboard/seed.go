package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitterboard/internal/demo"
)

var seedCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Load demo parents, students and notices",
	Long:  `Upserts demo profiles with stable ids and creates a new set of demo notices. Use "sitterboard token <id>" to act as one of them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		result, err := demo.Seed(cmd.Context(), demo.Services{
			Profiles:     rt.profiles,
			Notices:      rt.noticeSvc,
			Applications: rt.applications,
		})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tROLE\tID\tNAME")
		for _, p := range result.Profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Key, p.Role, p.ID, p.Name)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\ncreated %d notices\n", len(result.Notices))
		return nil
	},
}
