package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the bearer token used for the backend",
	Long: `Store the bearer token (JWT) given with --token for the current session.
It is sent as "Authorization: Bearer <token>" with every request. A token
given with --token on other commands or CHATLEGIS_TOKEN overrides the
stored one for that run only.`,
	Example: `  chatlegis login --token eyJhbGciOi...`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(cfg.Token)
		if token == "" {
			return fmt.Errorf("a token is required: chatlegis login --token <jwt>")
		}
		return withApp(cmd.Context(), func(a *app) error {
			a.setStoredToken(token)
			internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Logged in (session %s)", a.session.Name))
			return nil
		})
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored bearer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			a.setStoredToken("")
			internal.PrintSuccess(cmd.OutOrStdout(), "Logged out")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
