package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/freedl-go/api"
	"github.com/yourusername/freedl-go/api/handlers"
	"github.com/yourusername/freedl-go/internal/app"
)

const (
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
	shutdownTimeout    = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		detach, _ := cmd.Flags().GetBool("detach")
		if detach {
			return startDetached(cmd)
		}
		return runServer()
	},
}

func init() {
	serveCmd.Flags().Bool("detach", false, "Start the server in the background and return once it is ready")
}

func runServer() error {
	a, err := newApplication(serialDispatcher)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.Info("Starting freedl server",
		zap.String("version", handlers.Version),
		zap.String("host", a.config.Server.Host),
		zap.Int("port", a.config.Server.Port),
		zap.Bool("history", a.repo != nil),
		zap.Bool("strict_formats", a.config.Download.StrictFormats))

	router := api.SetupRouter(a.session, a.history(), log)

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// In-flight downloads finish before the runner stops
	if err := a.runner.Stop(); err != nil {
		log.Error("Error stopping task runner", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// startDetached re-runs `serve` as a background process and waits for it
// to answer health checks.
func startDetached(cmd *cobra.Command) error {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	baseURL := fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)
	if isServerReady(baseURL) {
		return fmt.Errorf("a server is already running at %s", baseURL)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"serve"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}

	child := exec.Command(execPath, args...)
	child.Env = os.Environ()
	child.Stdin = nil
	child.Stdout = nil
	child.Stderr = nil
	setSysProcAttr(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	pid := child.Process.Pid
	child.Process.Release()

	if err := waitForServerReady(baseURL); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Server started in background (PID: %d) at %s\n", pid, baseURL)
	return nil
}

// isServerReady checks if the server is answering readiness checks
func isServerReady(baseURL string) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(baseURL + "/ready")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// waitForServerReady polls the server until it's ready or timeout
func waitForServerReady(baseURL string) error {
	deadline := time.Now().Add(serverStartTimeout)

	for time.Now().Before(deadline) {
		if isServerReady(baseURL) {
			return nil
		}
		time.Sleep(serverPollInterval)
	}

	return fmt.Errorf("server did not start within %v", serverStartTimeout)
}
