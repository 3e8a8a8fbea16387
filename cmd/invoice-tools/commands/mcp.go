package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/invoice-tools/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server on stdin/stdout",
	Long: `Mcp serves the invoice tools over the Model Context Protocol
(JSON-RPC 2.0, one message per line on stdin and stdout). Configure it in an
MCP client. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	server.Version = Version
	srv := server.New(server.Options{
		Extractor:  a.extractor,
		Normalizer: a.normalizer,
		Log:        a.log,
	})
	a.log.Debug().Str("version", Version).Msg("MCP server starting")
	return srv.Run(ctx)
}
