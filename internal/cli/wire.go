package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/cache"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/events"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/food-catalog/internal/service"
)

// runtime is the wired service graph for one command.
type runtime struct {
	svc     *service.FoodService
	checks  map[string]handlers.HealthCheck
	closers []func() error
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

// buildRuntime wires repository, cache, publisher and service from config.
func (a *app) buildRuntime(ctx context.Context) (*runtime, error) {
	cfg := a.cfg
	rt := &runtime{checks: make(map[string]handlers.HealthCheck)}

	repo := repository.NewHTTPFoodRepository(repository.Options{
		BaseURL:           cfg.Store.BaseURL,
		Resource:          cfg.Store.Resource,
		Timeout:           cfg.Store.Timeout,
		RequestsPerSecond: cfg.Store.RequestsPerSecond,
		Burst:             cfg.Store.Burst,
		Logger:            a.logger,
	})

	var c cache.Cache
	switch cfg.Cache.Driver {
	case config.CacheMemory:
		c = cache.NewMemory(cfg.Cache.TTL)
	case config.CacheRedis:
		r := cache.NewRedis(cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		})
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		rt.checks["cache"] = r.Ping
		rt.closers = append(rt.closers, r.Close)
		c = r
	default:
		return nil, fmt.Errorf("%w: %s", cache.ErrUnknownDriver, cfg.Cache.Driver)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.Events.Enabled {
		kafka, err := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, a.logger)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.closers = append(rt.closers, kafka.Close)
		publisher = kafka
	}

	rt.svc = service.NewFoodService(repo, c, publisher, a.logger, service.Options{
		StaleTime:  cfg.Query.StaleTime,
		RetryCount: cfg.Query.RetryCount,
		RetryDelay: cfg.Query.RetryDelay,
	})
	return rt, nil
}

func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
