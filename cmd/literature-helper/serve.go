package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literature-helper/internal/assistant"
	"github.com/pdiddy/literature-helper/internal/server"
	"github.com/pdiddy/literature-helper/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve runs, exports and the help chat over HTTP",
	Long: `Serve starts a JSON API. Each client works in a session: runs, the last
report, exports and the help chat history are kept per session and expire
after server.session_ttl of inactivity.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().String("zotero-collection-id", "", "collection for saved items (default: zotero-collection-id secret)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, gen, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	store := session.NewStore(cfg.Server.SessionTTL)
	srv := server.New(p, assistant.New(gen), store, logger.Named("server"))
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
