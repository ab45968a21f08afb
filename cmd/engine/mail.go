package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"gigtracker-engine/internal/config"
	"gigtracker-engine/internal/ingest"
	"gigtracker-engine/internal/poll"
	"gigtracker-engine/internal/secrets"
	"gigtracker-engine/internal/store"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "IMAP alert polling",
}

var mailPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the IMAP password in the OS keyring",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		if env.cfg.Email.Username == "" || env.cfg.Email.IMAPHost == "" {
			return errors.New("set email.username and email.imap_host in " + env.cfgPath + " first")
		}

		prompt := promptui.Prompt{
			Label: "IMAP password for " + env.cfg.Email.Username,
			Mask:  '*',
			Validate: func(s string) error {
				if s == "" {
					return errors.New("password is empty")
				}
				return nil
			},
		}
		pw, err := prompt.Run()
		if err != nil {
			return err
		}
		account := secrets.IMAPKeyringAccount(env.cfg.Email)
		if err := secrets.SetIMAPPassword(account, pw); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored password for %s\n", account)
		return nil
	},
}

var mailPollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the mailbox once and import new alert mails",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(func(env *appEnv, db *store.DB) error {
			p := &poll.Poller{
				Config: func() config.Config { return env.cfg },
				Importer: func(cfg config.Config) *ingest.Importer {
					return ingest.New(db, cfg, env.log)
				},
				Password: func(ec config.EmailConfig) (string, error) {
					return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(ec))
				},
				Log: env.log,
			}
			res, err := p.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mails %d, added %d, skipped %d, failed %d\n",
				res.Mails, res.Added, res.Skipped, res.Failed)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mailCmd)
	mailCmd.AddCommand(mailPasswordCmd, mailPollCmd)
}
