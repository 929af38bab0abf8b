package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/salesrep/cart/cmd"
	catalogCmd "github.com/Alturino/salesrep/catalog/cmd"
	"github.com/Alturino/salesrep/internal/cli"
	"github.com/Alturino/salesrep/internal/constants"
	"github.com/Alturino/salesrep/internal/log"
)

func Start() {
	logger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Str(log.KeyAppName, constants.APP_SALESREP).
		Str(log.KeyTag, "main Start").
		Logger()

	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	c = logger.WithContext(c)

	rootCmd := &cobra.Command{
		Use:           constants.APP_SALESREP,
		Short:         "Local-first catalog cache and cart for sales reps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String(cli.FlagConfig, constants.APP_SALESREP, "config file name without extension")
	rootCmd.AddCommand(catalogCmd.Commands()...)
	rootCmd.AddCommand(cartCmd.Commands()...)

	if err := rootCmd.ExecuteContext(c); err != nil {
		stop()
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
