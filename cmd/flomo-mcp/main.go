package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/roivaz/flomo-mcp/internal/config"
	"github.com/roivaz/flomo-mcp/internal/flomo"
	"github.com/roivaz/flomo-mcp/internal/logging"
	"github.com/roivaz/flomo-mcp/internal/mcp"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "flomo-mcp: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flomo-mcp",
		Short:         "MCP server that writes notes to flomo",
		Long:          "Serves the write_note tool over MCP (stdio by default) and forwards notes to a flomo incoming webhook.",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Hosts may pass extra --key=value arguments; they are ignored.
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		Args:               cobra.ArbitraryArgs,
		RunE:               runServe,
	}

	config.AddFlags(root)
	config.Init(root)

	root.AddCommand(newToolsCmd(), newWriteCmd())
	return root
}

func newLogger() logging.Logger {
	return logging.New(logging.LeveledLogger(config.LogLevel()))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := mcp.DefaultConfig(logger.WithName("mcp"))
	if err != nil {
		return err
	}
	srv := mcp.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := config.HTTPAddr(); addr != "" {
		return serveHTTP(ctx, srv, addr, logger)
	}
	if err := srv.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

func serveHTTP(ctx context.Context, srv *mcp.Server, addr string, logger logging.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("MCP server listening", "addr", addr, "path", mcp.EndpointPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool descriptors exposed over MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mcp.New(mcp.Config{
				ToolAdapters: describeOnlyAdapters(),
				Logger:       newLogger(),
			})
			out, err := yaml.Marshal(srv.ListTools())
			if err != nil {
				return fmt.Errorf("encode tools: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write [content...]",
		Short: "Write a note directly, reading stdin when no content is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				content = strings.TrimRight(string(b), "\r\n")
			}

			logger := newLogger()
			cfg, err := mcp.DefaultConfig(logger.WithName("mcp"))
			if err != nil {
				return err
			}
			res, err := mcp.New(cfg).CallTool(cmd.Context(), "write_note", map[string]any{"content": content})
			if err != nil {
				return err
			}
			for _, text := range mcp.ResultTexts(res) {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
}

// describeOnlyAdapters binds write_note to an unconfigured client so the
// descriptors can be listed without any configuration.
func describeOnlyAdapters() map[string]mcp.ToolAdapter {
	return mcp.NewToolAdapters(flomo.NewClient(flomo.Config{}))
}
