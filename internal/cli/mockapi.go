package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ssebasarias/Dahell/internal/logging"
	"github.com/ssebasarias/Dahell/internal/mockapi"
)

func newMockAPICmd() *cobra.Command {
	var (
		addr     string
		products int
		latency  time.Duration
		level    string
	)
	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve an in-memory Dahell backend for local use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, _, err := logging.New(logging.Options{Level: level, Stderr: true})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := mockapi.New(logger,
				mockapi.WithProducts(products),
				mockapi.WithLatency(latency),
			)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	flags.IntVar(&products, "products", 240, "number of seeded Gold Mine products")
	flags.DurationVar(&latency, "latency", 0, "artificial delay added to every response")
	flags.StringVar(&level, "log-level", "info", "log level")
	return cmd
}
