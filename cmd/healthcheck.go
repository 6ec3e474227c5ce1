package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatlegis/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that chatlegis can reach its store and the backend",
	Long: `Check the health of chatlegis by verifying:
  • Resolved configuration
  • Local session store access
  • Presence of a bearer token
  • Backend reachability (lists conversations)

This command is useful for debugging connection and login problems.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		fmt.Fprintln(out, sectionStyle.Render("🔍 ChatLegis Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving configuration..."))
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		fmt.Fprintf(out, "   Backend: %s\n", cfg.BaseURL)
		fmt.Fprintf(out, "   Data directory: %s\n", cfg.DataDir)
		fmt.Fprintf(out, "   Timeout: %s\n", cfg.Timeout)
		fmt.Fprintln(out)

		// Step 2: Store
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening session store..."))
		a, err := openApp(ctx)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open session store:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer a.close()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Session %q opened (%d message(s))", a.session.Name, len(a.session.Messages))))
		fmt.Fprintf(out, "   Database: %s\n", a.store.Path())
		fmt.Fprintln(out)

		// Step 3: Token
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking login..."))
		if !internal.NewAuth(a.session.AuthToken).Authenticated() {
			fmt.Fprintln(out, warningStyle.Render("⚠️  No bearer token configured"))
			fmt.Fprintln(out, "   Run 'chatlegis login --token <jwt>' or set CHATLEGIS_TOKEN")
			printSummary(out, false)
			return fmt.Errorf("health check failed: %w", internal.ErrUnauthenticated)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Bearer token present"))
		fmt.Fprintln(out)

		// Step 4: Backend
		fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting backend..."))
		list, err := a.engine.RefreshConversations(ctx, a.session)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend check failed:"), err)
			printSummary(out, false)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Backend reachable, %d conversation(s) stored", len(list))))
		if err := a.save(ctx); err != nil {
			internal.LogWarn("Failed to save session", "error", err)
		}

		printSummary(out, true)
		return nil
	},
}

func printSummary(out io.Writer, ok bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
	fmt.Fprintln(out)
	if ok {
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return
	}
	fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
