// pkg/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bstardust/exif-editor/internal/config"
	"github.com/bstardust/exif-editor/internal/editor"
	"github.com/bstardust/exif-editor/internal/exif"
	"github.com/bstardust/exif-editor/internal/location"
	"github.com/bstardust/exif-editor/internal/logger"
	"github.com/bstardust/exif-editor/internal/metadata"
	"github.com/bstardust/exif-editor/pkg/s3client"
)

// app carries the state shared by every command. cfg is only set once the
// root command's PersistentPreRunE has loaded the configuration.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	objects    s3client.ObjectStore
}

func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interruption signals
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		logger.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := newRootCommand(&app{}).ExecuteContext(ctx); err != nil {
		logger.Error("Error executing command: %v", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "exif-editor",
		Short: "View and edit the EXIF metadata of JPEG images",
		Long: `A tool for viewing and editing the EXIF tags of JPEG images, from the
command line or through a small web form. Images can be read from and
written to local files or S3-compatible storage (s3://bucket/key).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	// Add commands
	rootCmd.AddCommand(newShowCommand(a))
	rootCmd.AddCommand(newEditCommand(a))
	rootCmd.AddCommand(newLocateCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	logger.SetLevel(cfg.LogLevel)

	a.cfg = cfg
	return nil
}

// locator returns the configured IP geolocation provider
func (a *app) locator() location.Provider {
	rc := location.DefaultRetryConfig()
	rc.MaxRetries = a.cfg.Location.MaxRetries
	return location.NewIPProvider(a.cfg.Location.Endpoint, a.cfg.Location.Timeout, location.WithRetry(rc))
}

// newEditor wires the metadata store, coercer and location provider
func (a *app) newEditor(locator location.Provider) (*editor.Editor, error) {
	registry, err := exif.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load tag registry: %w", err)
	}

	store, err := metadata.NewStore(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metadata store: %w", err)
	}

	return editor.New(store, exif.NewCoercer(registry), locator, a.cfg.Output.Filename), nil
}

// objectStore returns the S3 client used for s3:// paths, creating it on
// first use
func (a *app) objectStore() (s3client.ObjectStore, error) {
	if a.objects != nil {
		return a.objects, nil
	}

	s3Config := s3client.Config{
		Endpoint:  a.cfg.Storage.Endpoint,
		Region:    a.cfg.Storage.Region,
		AccessKey: a.cfg.Storage.AccessKey,
		SecretKey: a.cfg.Storage.SecretKey,
		UseSSL:    a.cfg.Storage.UseSSL,
		Prefix:    a.cfg.Storage.Prefix,
	}

	client, err := s3client.New(s3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	a.objects = client
	return client, nil
}
