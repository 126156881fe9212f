// Package cli implements the spendwise terminal client on top of the
// records coordinator: the same state machine the web UI drives, with
// flags and prompts standing in for the controls.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/client"
	"spendwise/internal/config"
	"spendwise/internal/notify"
	"spendwise/internal/session"
)

// env bundles what every subcommand needs.
type env struct {
	cfg      *config.Config
	client   *client.Client
	sessions *session.Store
	notices  *notify.Queue
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var serverURL string
	var sessionFile string

	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "spendwise-cli",
		Short: "Track income and expense records from the terminal",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = config.Load()
			if serverURL != "" {
				e.cfg.ServerURL = serverURL
			}
			if sessionFile != "" {
				e.cfg.SessionFile = sessionFile
			}
			if e.cfg.SessionFile == "" {
				e.cfg.SessionFile = session.DefaultPath()
			}
			e.client = client.New(e.cfg.ServerURL)
			e.sessions = session.NewStore(e.cfg.SessionFile)
			// Toasts go to stderr so piped record output stays clean.
			e.notices = notify.NewQueue(2, func(n notify.Notification) {
				fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Type, n.Message)
			})
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (default from SPENDWISE_SERVER_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "path of the session file")

	rootCmd.AddCommand(newRegisterCommand(e))
	rootCmd.AddCommand(newLoginCommand(e))
	rootCmd.AddCommand(newLogoutCommand(e))
	rootCmd.AddCommand(newWhoamiCommand(e))
	rootCmd.AddCommand(newResetPasswordCommand(e))
	rootCmd.AddCommand(newRecordsCommand(e))

	return rootCmd
}

// requireUser loads the persisted session or fails with a login hint.
func (e *env) requireUser() (*session.User, error) {
	u, err := e.sessions.Load()
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("not logged in: run 'spendwise-cli login' first")
	}
	return u, nil
}
