package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/strmfi/vestd/internal/di"
)

// httpShutdownTimeout bounds how long the JSON-RPC server is given to
// drain in-flight requests before the process exits.
const httpShutdownTimeout = 5 * time.Second

// serverCmd represents the server command (default action): it brings
// up both of vestd's transports — the JSON-RPC instruction-submission
// API and the gRPC health surface — against a single vesting engine
// built from the loaded configuration.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the vestd daemon",
	Long: `Run the vestd daemon, which provides:
- HTTP JSON-RPC API for submitting vesting instructions
- gRPC health-check endpoint for orchestration

This is the default command when no subcommand is specified.`,
	Run: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Set server as the default command
	rootCmd.Run = runServer

	serverCmd.Flags().Bool("standalone", false, "run with no external fee oracle, using built-in defaults")
}

func runServer(cmd *cobra.Command, args []string) {
	if !quiet {
		fmt.Println("Starting vestd - vesting escrow daemon")
		fmt.Println("=======================================")
	}

	c := loadedConfig()
	if standalone, _ := cmd.Flags().GetBool("standalone"); standalone {
		c.Server.Standalone = true
	}

	container := di.New()
	provider := di.NewProvider(container, c)
	if err := provider.RegisterAll(); err != nil {
		log.Fatalf("vestd: registering services: %v", err)
	}

	rpcServer, err := provider.GetRPCServer()
	if err != nil {
		log.Fatalf("vestd: building RPC server: %v", err)
	}

	healthServer, err := provider.GetHealthServer()
	if err != nil {
		log.Fatalf("vestd: building health server: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.Handle("/", rpcServer)
	mux.Handle("/rpc", rpcServer)
	mux.Handle("/ws", rpcServer.Events())

	httpServer := &http.Server{
		Addr:    c.Server.RPCListen,
		Handler: mux,
	}

	errCh := make(chan error, 2)

	go func() {
		if !quiet {
			fmt.Printf("JSON-RPC listening on http://%s/\n", c.Server.RPCListen)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("rpc server: %w", err)
		}
	}()

	grpcLis, err := net.Listen("tcp", c.Server.GRPCListen)
	if err != nil {
		log.Fatalf("vestd: listening on %s: %v", c.Server.GRPCListen, err)
	}

	go func() {
		if !quiet {
			fmt.Printf("gRPC health check listening on %s\n", c.Server.GRPCListen)
		}
		if err := healthServer.Serve(ctx, grpcLis); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			fmt.Println("Shutting down...")
		}
	case err := <-errCh:
		log.Printf("vestd: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	healthServer.Stop()
}
