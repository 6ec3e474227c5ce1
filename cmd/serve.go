package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/chatlegis/internal"
	"github.com/iksnae/chatlegis/internal/mockserver"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveToken  string
	serveSchema string
)

// serveCmd represents the mock-server command
var serveCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run an in-memory ChatLegis backend for local development",
	Long: `Serve the three ChatLegis routes from memory. Replies echo the prompt,
the category and any attached file. Stored history is emitted in the
"prompt" schema, the "parts" schema, or alternating between them ("mixed").`,
	Example: `  chatlegis mock-server --addr :8000 --schema mixed
  chatlegis --base-url http://127.0.0.1:8000 --token dev send "hello"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema := mockserver.Schema(serveSchema)
		switch schema {
		case mockserver.SchemaPrompt, mockserver.SchemaParts, mockserver.SchemaMixed:
		default:
			return fmt.Errorf("unknown schema %q (supported: prompt, parts, mixed)", serveSchema)
		}

		backend := mockserver.New(mockserver.Options{Token: serveToken, Schema: schema})
		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           backend.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		internal.PrintInfo(cmd.OutOrStdout(), fmt.Sprintf("Mock ChatLegis backend listening on %s (schema %s)", serveAddr, schema))

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		internal.LogInfo("Shutting down mock backend")
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8000", "Listen address")
	serveCmd.Flags().StringVar(&serveToken, "accept-token", "", "Only accept this bearer token (any token when empty)")
	serveCmd.Flags().StringVar(&serveSchema, "schema", string(mockserver.SchemaPrompt), "History record schema (prompt, parts, mixed)")
}
