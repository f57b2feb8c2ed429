package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MiMa6/rag-search-system/config"
	"github.com/MiMa6/rag-search-system/internal/adapter/embedding"
	"github.com/MiMa6/rag-search-system/internal/adapter/llm"
	"github.com/MiMa6/rag-search-system/internal/server"
)

var (
	serveHost       string
	servePort       int
	serveModel      string
	serveCollection string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Long: `Expose indexed collections over a JSON API.

  POST /api/v1/query        Ask a question, optionally naming a collection
  GET  /api/v1/collections  List stored collections
  GET  /health              Liveness check

Collections must be indexed before they can be queried.`,
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	serveCmd.Flags().StringVarP(&serveModel, "model-config", "m", "default", "model configuration to use")
	serveCmd.Flags().StringVarP(&serveCollection, "collection-name", "c", "", "default collection (default: prefix + model config)")
}

func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	mc, err := config.ResolveModelConfig(serveModel)
	if err != nil {
		return err
	}
	collection := resolveCollection(cfg, mc.Name, serveCollection)

	st, err := openStore(cfg, "")
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	embedder, err := embedding.NewClient(mc)
	if err != nil {
		return err
	}
	generator, err := llm.NewClient(mc)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	srv := server.New(st, embedder, generator, collection, cfg.Query.TopK, cfg.Query.TokenBudget, logger)

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigCh:
	}

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}

// newLogger builds a production logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zc.Level = parsed
	}
	return zc.Build()
}
