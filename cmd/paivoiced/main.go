// Package main provides the entry point for the paivoiced voice
// notification daemon.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pai-voice/paivoiced/internal/daemon"
	"github.com/pai-voice/paivoiced/internal/dlog"
	"github.com/pai-voice/paivoiced/internal/httpapi"
)

var (
	// Version as provided by goreleaser.
	Version = ""

	cfgFile string
	port    int
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "paivoiced",
		Short: "A local voice-notification daemon",
		Long:  "paivoiced listens on localhost and speaks notifications through whichever TTS back-end is available.",
		RunE:  runDaemon,
	}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Print a dependency and back-end availability report, then exit",
		RunE:  runProbe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default $PAIVOICED_CONFIG_HOME or the platform config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides PORT from the dotenv file)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))

	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version

	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	dlog.Init(viper.GetBool("debug"))
	applyConfigFileOverride()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(ctx)
	if err != nil {
		return fmt.Errorf("initialise daemon: %w", err)
	}

	if p := viper.GetInt("port"); p != 0 {
		d.Config.Port = p
	}

	mux := httpapi.NewMux(d)
	addr := fmt.Sprintf("127.0.0.1:%d", d.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("paivoiced starting",
		"addr", addr,
		"engine", d.Dispatcher.Selected.String(),
		"platform", d.Platform.OS,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("paivoiced shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("bind failed: %w", err)
	}
}

func applyConfigFileOverride() {
	if cfgFile == "" {
		return
	}
	_ = os.Setenv("PAIVOICED_CONFIG_HOME", cfgFile)
}

func runProbe(cmd *cobra.Command, args []string) error {
	dlog.Init(viper.GetBool("debug"))
	applyConfigFileOverride()

	ctx := context.Background()
	d, err := daemon.New(ctx)
	if err != nil {
		return fmt.Errorf("initialise daemon: %w", err)
	}

	fmt.Println(daemon.Report(d))
	return nil
}
