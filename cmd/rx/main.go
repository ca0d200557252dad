package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rolodex/internal/client"
)

var (
	serverURL  string
	grpcAddr   string
	transport  string
	jsonOutput bool

	recordsClient client.RecordsClient
)

// defaultServer resolves the HTTP base URL: $ROLODEX_SERVER, then the
// config file, then the built-in default.
func defaultServer() string {
	if s := os.Getenv(client.ServerEnv); s != "" {
		return s
	}
	if s := loadSettingsOnce().Server; s != "" {
		return s
	}
	return client.DefaultBaseURL
}

func defaultGRPCAddr() string {
	if s := os.Getenv("ROLODEX_GRPC_SERVER"); s != "" {
		return s
	}
	if s := loadSettingsOnce().GRPCAddr; s != "" {
		return s
	}
	return "localhost:9090"
}

func defaultTransport() string {
	if s := loadSettingsOnce().Transport; s != "" {
		return s
	}
	return "http"
}

// newClient builds the records client for the selected transport.
func newClient() (client.RecordsClient, error) {
	switch transport {
	case "http":
		return client.NewHTTPClient(serverURL), nil
	case "grpc":
		c, err := client.NewGRPCClient(grpcAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown transport %q (must be http or grpc)", transport)
}

var rootCmd = &cobra.Command{
	Use:           "rx <command>",
	Short:         "Browse and export customers, employees and suppliers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		recordsClient = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if recordsClient != nil {
			recordsClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&grpcAddr, "grpc-addr", defaultGRPCAddr(), "gRPC server address")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", defaultTransport(), "transport protocol (http or grpc)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Records
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(browseCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
