package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/store"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage portfolio projects cited in proposals",
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a portfolio project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		item := domain.PortfolioItem{
			Name:      args[0],
			URLLive:   args[1],
			URLGithub: mustString(cmd.Flags().GetString("github")),
			Keywords:  mustString(cmd.Flags().GetString("keywords")),
		}
		return withDB(func(_ *appEnv, db *store.DB) error {
			saved, err := db.AddPortfolioItem(cmd.Context(), item)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added portfolio item %d\n", saved.ID)
			return nil
		})
	},
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List portfolio projects",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(_ *appEnv, db *store.DB) error {
			items, err := db.ListPortfolio(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tURL\tKEYWORDS")
			for _, p := range items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.URLLive, p.Keywords)
			}
			return tw.Flush()
		})
	},
}

var portfolioRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a portfolio project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withDB(func(_ *appEnv, db *store.DB) error {
			return db.DeletePortfolioItem(cmd.Context(), id)
		})
	},
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioAddCmd, portfolioListCmd, portfolioRmCmd)

	portfolioAddCmd.Flags().String("github", "", "source repository url")
	portfolioAddCmd.Flags().StringP("keywords", "k", "", "comma-separated keywords used to match jobs")
	_ = portfolioAddCmd.MarkFlagRequired("keywords")
}
