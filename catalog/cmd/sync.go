package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/salesrep/catalog/internal/controller"
	"github.com/Alturino/salesrep/catalog/internal/service"
	"github.com/Alturino/salesrep/internal/cli"
	"github.com/Alturino/salesrep/internal/constants"
	"github.com/Alturino/salesrep/internal/log"
)

func newSyncCommand() *cobra.Command {
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Poll a category into the local cache until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, _ := cmd.Flags().GetString(flagCategory)
			customerID, _ := cmd.Flags().GetString(flagCustomer)
			return runSync(cmd, categoryID, customerID)
		},
	}
	sync.Flags().String(flagCategory, "", "category id to keep fresh")
	sync.Flags().String(flagCustomer, "", "customer id scoping prices and availability")
	sync.MarkFlagRequired(flagCategory)
	return sync
}

func runSync(cmd *cobra.Command, categoryID string, customerID string) error {
	c, app, err := cli.NewApp(cmd, constants.APP_SYNC_AGENT)
	if err != nil {
		return err
	}
	defer app.Close(c)

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "main runSync").
		Str(log.KeyCategoryID, categoryID).
		Str(log.KeyCustomerID, customerID).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "initializing catalogService").Logger()
	logger.Info().Msg("initializing catalogService")
	catalogService := service.NewCatalogService(app.Products, app.Categories)
	logger.Info().Msg("initialized catalogService")

	logger = logger.With().Str(log.KeyProcess, "refreshing categories").Logger()
	logger.Info().Msg("refreshing categories")
	if err := catalogService.RefreshCategories(c); err != nil {
		logger.Warn().Err(err).Msg("continuing with cached categories")
	} else {
		logger.Info().Msg("refreshed categories")
	}

	feed, report := catalogService.WatchCategory(c, categoryID)
	go func() {
		logger := logger.With().Str(log.KeyProcess, "watching category").Logger()
		for st := range feed {
			event := logger.Info()
			if st.IsError() {
				event = logger.Warn().Err(st.Err)
			}
			event.Stringer(log.KeyState, st.Kind).Int(log.KeyProductsCount, len(st.Data)).Msg("category feed")
		}
	}()

	logger = logger.With().Str(log.KeyProcess, "initializing scheduler").Logger()
	logger.Info().Msg("initializing scheduler")
	scheduler := service.NewScheduler(
		categoryID,
		func(c context.Context) error {
			return catalogService.RefreshCategory(c, categoryID, customerID)
		},
		app.Config.Sync.Interval,
		service.WithRefreshTimeout(app.Config.Sync.RefreshTimeout),
		service.WithReporter(report),
	)
	logger.Info().Msg("initialized scheduler")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.StrictSlash(true)
	controller.AttachStatusController(router, scheduler)
	logger.Info().Msg("initialized router")

	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.Config.Status.Host, app.Config.Status.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running status server", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	logger = logger.With().Str(log.KeyProcess, "polling").Logger()
	scheduler.Start(c)
	logger.Info().Dur(log.KeyInterval, app.Config.Sync.Interval).Msg("polling started")

	<-c.Done()
	logger.Info().Msg("received interuption signal shutting down")

	scheduler.Stop()
	<-scheduler.Done()
	logger.Info().Msg("polling stopped")

	shutdown, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdown); err != nil {
		err = fmt.Errorf("failed shutting down status server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("shutdown status server")

	return nil
}
