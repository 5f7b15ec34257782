package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"edge-lab-bot/config"
	"edge-lab-bot/internal/infrastructure/codec"
	"edge-lab-bot/internal/logger"
)

var version = "dev"

// cli общее состояние подкоманд: конфигурация и логгер
type cli struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	var logLevel, logFormat string

	root := &cobra.Command{
		Use:   "edge-lab",
		Short: "Edge and corner detection playground",
		Long: `edge-lab applies classic image operators (Canny, Sobel, Prewitt,
Harris, goodFeaturesToTrack) to uploaded images.

Examples:
  edge-lab bot
  edge-lab detect photo.jpg --operator sobel --set kernel_size=5
  edge-lab detect photo.jpg --operator corners --result-only --out corners.png`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.LogFormat = logFormat
			}

			c.cfg = cfg
			c.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, console)")

	root.AddCommand(newBotCmd(c), newDetectCmd(c))
	return root
}

// newCodec создаёт кодек с ограничениями из конфигурации
func (c *cli) newCodec() *codec.ImagingCodec {
	return codec.NewImagingCodec(c.cfg.MaxImageSide).WithMaxPixels(c.cfg.MaxImagePixels)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
