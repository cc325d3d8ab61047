package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/interpretek/booking-core/config"
	"github.com/interpretek/booking-core/internal/data"
	"github.com/interpretek/booking-core/internal/directory"
	"github.com/interpretek/booking-core/internal/notify"
	"github.com/interpretek/booking-core/internal/notify/pushgw"
	"github.com/interpretek/booking-core/internal/notify/smsgw"
	"github.com/interpretek/booking-core/internal/observability/statsd"
	"github.com/interpretek/booking-core/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Bookings      *service.BookingService
	Claims        *service.ClaimService
	PotentialJobs *service.PotentialJobsService
	DistanceFeed  *service.DistanceFeedService
	Dispatcher    *service.NotificationDispatcher
	Maintenance   *service.MaintenanceService
	MetricsSink   *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires repositories, gateways and services from connected
// infrastructure.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.DB == nil {
		return nil, errors.New("database handle is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repoCfg := data.RepoConfig{Logger: logger}
	jobRepo := data.NewJobRepo(deps.DB, repoCfg)
	distanceRepo := data.NewDistanceRepo(deps.DB, repoCfg)
	auditRepo := data.NewAuditRepo(deps.DB, repoCfg)
	eventRepo := data.NewNotificationEventRepo(deps.DB, repoCfg)

	var cacheRepo *data.RedisCacheRepo
	if deps.RedisClient != nil {
		cacheRepo = data.NewRedisCacheRepo(deps.RedisClient)
	}

	metricsSink, err := buildMetrics(logger, deps.Config.Metrics)
	if err != nil {
		return nil, err
	}

	dir, err := buildDirectory(logger, deps.Config.Directory, cacheRepo)
	if err != nil {
		return nil, err
	}

	push, sms, err := buildGateways(deps.Config.Notifications)
	if err != nil {
		return nil, err
	}

	dispatcherOpts := service.NotificationDispatcherOptions{
		Events:         eventRepo,
		Directory:      dir,
		Push:           push,
		SMS:            sms,
		Logger:         logger,
		Metrics:        metricsSink,
		MaxInFlight:    deps.Config.Dispatch.MaxInFlight,
		AttemptTimeout: deps.Config.Dispatch.AttemptTimeout,
		SMSThrottleTTL: deps.Config.Dispatch.SMSThrottleTTL,
	}
	if cacheRepo != nil {
		dispatcherOpts.Cache = cacheRepo
	}
	dispatcher, err := service.NewNotificationDispatcher(dispatcherOpts)
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	bookings, err := service.NewBookingService(service.BookingServiceOptions{
		Repo:       jobRepo,
		Directory:  dir,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metricsSink,
	})
	if err != nil {
		return nil, fmt.Errorf("build booking service: %w", err)
	}

	claims, err := service.NewClaimService(service.ClaimServiceOptions{
		Repo:       jobRepo,
		Directory:  dir,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metricsSink,
	})
	if err != nil {
		return nil, fmt.Errorf("build claim service: %w", err)
	}

	potential, err := service.NewPotentialJobsService(service.PotentialJobsServiceOptions{
		Repo:      jobRepo,
		Directory: dir,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build potential jobs service: %w", err)
	}

	distanceFeed, err := service.NewDistanceFeedService(service.DistanceFeedServiceOptions{
		DB:        deps.DB,
		Jobs:      jobRepo,
		Distances: distanceRepo,
		Audits:    auditRepo,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build distance feed service: %w", err)
	}

	var maintenance *service.MaintenanceService
	if deps.Config.Maintenance.Enabled {
		maintenance, err = service.NewMaintenanceService(service.MaintenanceServiceOptions{
			Repo:    jobRepo,
			Config:  deps.Config.Maintenance,
			Logger:  logger,
			Metrics: metricsSink,
		})
		if err != nil {
			return nil, fmt.Errorf("build maintenance service: %w", err)
		}
	}

	return &ServiceContainer{
		Bookings:      bookings,
		Claims:        claims,
		PotentialJobs: potential,
		DistanceFeed:  distanceFeed,
		Dispatcher:    dispatcher,
		Maintenance:   maintenance,
		MetricsSink:   metricsSink,
	}, nil
}

func buildMetrics(logger *slog.Logger, cfg config.MetricsConfig) (*statsd.Client, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build statsd client: %w", err)
	}
	return client, nil
}

func buildDirectory(logger *slog.Logger, cfg config.DirectoryConfig, cache *data.RedisCacheRepo) (*directory.Client, error) {
	dirCfg := directory.Config{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.Timeout,
		ListCacheTTL: cfg.ListCacheTTL,
		Logger:       logger,
	}
	if cache != nil {
		dirCfg.Cache = cache
	}
	client, err := directory.NewClient(dirCfg)
	if err != nil {
		return nil, fmt.Errorf("build directory client: %w", err)
	}
	return client, nil
}

func buildGateways(cfg config.NotificationsConfig) (notify.PushSender, notify.SMSSender, error) {
	var (
		push notify.PushSender
		sms  notify.SMSSender
	)

	if cfg.Push.Enabled {
		client, err := pushgw.NewClient(pushgw.Config{
			Endpoint:          cfg.Push.Endpoint,
			APIKey:            cfg.Push.APIKey,
			PayloadExpression: cfg.Push.PayloadExpression,
			Timeout:           cfg.Push.Timeout,
			RetryLimit:        cfg.Push.RetryLimit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build push gateway: %w", err)
		}
		push = client
	}

	if cfg.SMS.Enabled {
		client, err := smsgw.NewClient(smsgw.Config{
			Endpoint:   cfg.SMS.Endpoint,
			APIKey:     cfg.SMS.APIKey,
			Sender:     cfg.SMS.Sender,
			Timeout:    cfg.SMS.Timeout,
			RetryLimit: cfg.SMS.RetryLimit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build sms gateway: %w", err)
		}
		sms = client
	}

	return push, sms, nil
}
