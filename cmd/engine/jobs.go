package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gigtracker-engine/internal/domain"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/logger"
	"gigtracker-engine/internal/rank"
	"gigtracker-engine/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import [FILE|-]",
	Short: "Import jobs from a saved alert email (stdin when FILE is - or omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		text, err := readInput(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withImporter(func(imp *ingest.Importer) error {
			rep, err := imp.ImportText(cmd.Context(), text)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "parsed %d, added %d, skipped %d\n", rep.Parsed, rep.Added, rep.Skipped)
			printJobs(out, rep.Jobs)
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job by hand",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		lead := domain.JobLead{
			Title:       mustString(f.GetString("title")),
			Description: mustString(f.GetString("description")),
			URL:         mustString(f.GetString("url")),
			Platform:    mustString(f.GetString("platform")),
		}
		notes := mustString(f.GetString("notes"))
		return withImporter(func(imp *ingest.Importer) error {
			j, err := imp.ImportManual(cmd.Context(), lead, notes)
			if errors.Is(err, store.ErrDuplicate) {
				fmt.Fprintf(cmd.OutOrStdout(), "already tracked as job %d\n", j.ID)
				return nil
			}
			if err != nil {
				return err
			}
			printJobs(cmd.OutOrStdout(), []store.Job{j})
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		opts := store.ListJobsOpts{
			Sort:  mustString(f.GetString("sort")),
			Limit: mustInt(f.GetInt("limit")),
		}
		if s := mustString(f.GetString("status")); s != "" {
			st, ok := domain.ParseStatus(s)
			if !ok {
				return fmt.Errorf("unknown status %q", s)
			}
			opts.Status = st
		}
		return withDB(func(env *appEnv, db *store.DB) error {
			jobs, err := db.ListJobs(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if mustBool(f.GetBool("output-json")) {
				return writeJSON(cmd.OutOrStdout(), jobs)
			}
			printJobs(cmd.OutOrStdout(), jobs)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status JOB_ID [STATUS]",
	Short: "Move a job through the pipeline; prompts for the status when omitted",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		var st domain.JobStatus
		if len(args) == 2 {
			var ok bool
			if st, ok = domain.ParseStatus(args[1]); !ok {
				return fmt.Errorf("unknown status %q", args[1])
			}
		} else {
			prompt := promptui.Select{
				Label: fmt.Sprintf("New status for job %d", id),
				Items: domain.Statuses,
			}
			_, picked, err := prompt.Run()
			if err != nil {
				return err
			}
			st = domain.JobStatus(picked)
		}

		u := store.JobUpdate{Status: &st}
		if cmd.Flags().Changed("notes") {
			notes := mustString(cmd.Flags().GetString("notes"))
			u.Notes = &notes
		}

		return withDB(func(env *appEnv, db *store.DB) error {
			j, err := db.UpdateJob(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			env.log.Info("status updated", append(logger.Job(j.ID, j.Title), zap.String("status", string(j.Status)))...)
			printJobs(cmd.OutOrStdout(), []store.Job{j})
			return nil
		})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a title and description against the configured rubric without storing anything",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		fs := rank.FromConfig(env.cfg).Score(domain.JobLead{
			Title:       mustString(f.GetString("title")),
			Description: mustString(f.GetString("description")),
		})
		hits := "none"
		if len(fs.Hits) > 0 {
			hits = strings.Join(fs.Hits, ", ")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "score %d (%s), status %s\n",
			fs.Score, hits, rank.StatusForScore(fs.Score, env.cfg.App.ShortlistThreshold))
		return nil
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft JOB_ID",
	Short: "Draft and store the next proposal version for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		f := cmd.Flags()
		opts := ingest.DraftOpts{
			Timeframe:   mustString(f.GetString("timeframe")),
			PortfolioID: int64(mustInt(f.GetInt("portfolio"))),
		}
		return withImporter(func(imp *ingest.Importer) error {
			p, err := imp.Draft(cmd.Context(), id, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# proposal v%d for job %d\n\n%s\n\nQuestions:\n%s\n\n%s\n",
				p.Version, p.JobID, p.DraftText, p.Questions, p.PricingNote)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd, addCmd, listCmd, statusCmd, scoreCmd, draftCmd)

	addCmd.Flags().String("title", "", "job title")
	addCmd.Flags().String("description", "", "job description")
	addCmd.Flags().String("url", "", "job url")
	addCmd.Flags().String("platform", domain.DefaultPlatform, "platform name")
	addCmd.Flags().String("notes", "", "free-form notes")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("description")

	listCmd.Flags().StringP("status", "s", "", "only jobs in this status")
	listCmd.Flags().String("sort", "date", "date, score or title")
	listCmd.Flags().IntP("limit", "n", 50, "maximum number of jobs")
	listCmd.Flags().Bool("output-json", false, "print jobs as JSON")

	statusCmd.Flags().String("notes", "", "replace the job's notes")

	scoreCmd.Flags().String("title", "", "job title")
	scoreCmd.Flags().String("description", "", "job description")

	draftCmd.Flags().String("timeframe", "", "delivery estimate (default proposal.default_timeframe)")
	draftCmd.Flags().Int("portfolio", 0, "portfolio item id to cite (default best keyword match)")
}

func withDB(fn func(env *appEnv, db *store.DB) error) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = env.log.Sync() }()

	db, err := env.openDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	return fn(env, db)
}

func withImporter(fn func(imp *ingest.Importer) error) error {
	return withDB(func(env *appEnv, db *store.DB) error {
		return fn(ingest.New(db, env.cfg, env.log))
	})
}

func printJobs(w io.Writer, jobs []store.Job) {
	if len(jobs) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tSTATUS\tTITLE\tURL")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", j.ID, j.FitScore, j.Status, logger.Truncate(j.Title, 60), j.URL)
	}
	_ = tw.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", s)
	}
	return id, nil
}

// Flag getters only fail for flags that were never defined.
func mustString(s string, _ error) string { return s }
func mustInt(n int, _ error) int { return n }
func mustBool(b bool, _ error) bool { return b }
