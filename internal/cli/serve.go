package cli

import (
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/factories"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/mockstore"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		mockStore bool
		mockSeed  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if mockStore {
				baseURL, closeStore, err := a.startMockStore(mockSeed)
				if err != nil {
					return err
				}
				defer closeStore()
				a.cfg.Store.BaseURL = baseURL
			}

			rt, err := a.buildRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					a.logger.Warn("failed to release resources", "error", err)
				}
			}()

			health := handlers.NewHealthHandler(a.logger)
			for name, check := range rt.checks {
				health.AddCheck(name, check)
			}

			srv := &http.Server{
				Addr: a.cfg.Server.Addr(),
				Handler: server.NewRouter(server.Options{
					Service: rt.svc,
					Health:  health,
					Logger:  a.logger,
					APIKeys: a.cfg.Server.APIKeys,
				}),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}

			a.logger.Info("starting food catalog gateway",
				"address", srv.Addr,
				"store", a.cfg.Store.BaseURL,
				"cache", a.cfg.Cache.Driver,
				"log_level", a.cfg.LogLevel,
			)
			return server.Run(ctx, srv, a.cfg.Server.ShutdownTimeout, a.logger)
		},
	}

	cmd.Flags().BoolVar(&mockStore, "mock-store", false, "serve an in-memory food store instead of the remote one")
	cmd.Flags().IntVar(&mockSeed, "mock-seed", 20, "number of generated meals in the mock store")
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().String("port", "", "listen port")
	bindFlag(a.v, "server.host", cmd.Flags().Lookup("host"))
	bindFlag(a.v, "server.port", cmd.Flags().Lookup("port"))
	return cmd
}

// startMockStore serves a seeded in-memory store on a loopback port.
func (a *app) startMockStore(seed int) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	store := mockstore.New(a.cfg.Store.Resource, a.logger)
	factory := factories.NewFoodFactory()
	for i := 0; i < seed; i++ {
		store.Seed(factory.RawRecord())
	}

	srv := &http.Server{Handler: store}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("mock store stopped", "error", err)
		}
	}()

	baseURL := "http://" + ln.Addr().String()
	a.logger.Info("mock store listening", "url", baseURL, "records", store.Len())
	return baseURL, func() { _ = srv.Close() }, nil
}
