package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/transfusion-vitals/pkg/cache"
	"github.com/synaptica-ai/transfusion-vitals/pkg/catalog"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/config"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/database"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/kafka"
	"github.com/synaptica-ai/transfusion-vitals/pkg/common/logger"
	"github.com/synaptica-ai/transfusion-vitals/pkg/csvsource"
	"github.com/synaptica-ai/transfusion-vitals/pkg/dataservice"
	"github.com/synaptica-ai/transfusion-vitals/pkg/gateway/httpclient"
	"github.com/synaptica-ai/transfusion-vitals/pkg/gateway/middleware"
	"github.com/synaptica-ai/transfusion-vitals/pkg/gateway/routes"
	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
	"github.com/synaptica-ai/transfusion-vitals/pkg/storage"
)

const serviceName = "vitals-service"

func main() {
	logger.Init(serviceName)
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat := catalog.DefaultCatalog()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			logger.Log.WithError(err).Warn("Catalog file not usable, using built-in catalog")
		} else {
			cat = loaded
		}
	}

	// Without DATA_BASE_URL the CSV files are read straight from DATA_DIR.
	baseURL := cfg.DataBaseURL
	var clientOpts []httpclient.Option
	if baseURL == "" {
		baseURL = "file:///"
		clientOpts = append(clientOpts, httpclient.WithLocalDir(cfg.DataDir))
	}
	client := httpclient.New(cfg.FetchTimeout, clientOpts...)

	var loaderOpts []csvsource.LoaderOption
	serviceOpts := []dataservice.Option{
		dataservice.WithCatalog(cat),
		dataservice.WithTTLs(cfg.CacheIndexTTL, cfg.CacheSeriesTTL),
	}

	if cfg.RedisMirrorEnabled {
		mirror := storage.NewRedisMirror(database.GetRedis(cfg), cfg.RedisMirrorPrefix, cfg.RedisMirrorTTL)
		loaderOpts = append(loaderOpts, csvsource.WithMirror(mirror))
		serviceOpts = append(serviceOpts, dataservice.WithPurger(mirror))
		defer database.CloseRedis()
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		defer producer.Close()
		serviceOpts = append(serviceOpts, dataservice.WithPublisher(producer))
	}

	loader := csvsource.NewLoader(baseURL, client, loaderOpts...)
	svc := dataservice.New(cache.New(cfg.CacheDefaultTTL), loader, serviceOpts...)

	if cfg.KafkaEnabled {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaRefreshTopic, cfg.KafkaGroupID)
		defer consumer.Close()
		go func() {
			if err := consumer.Consume(ctx, svc.HandleRefreshEvent); err != nil && ctx.Err() == nil {
				logger.Log.WithError(err).Error("Refresh consumer stopped")
			}
		}()
	}

	if cfg.PreloadOnStart {
		go svc.Preload(ctx)
	}

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.RateLimit(cfg.GatewayRateLimitRPS, cfg.GatewayRateLimitBurst))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods("GET")

	if cfg.ServeDataDir {
		router.PathPrefix("/data/").Handler(http.StripPrefix("/data/", http.FileServer(http.Dir(cfg.DataDir))))
	}

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	routes.NewDashboardHandler(svc).Register(apiRouter)
	routes.NewCacheHandler(svc).Register(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(logrus.Fields{
			"host":     cfg.ServerHost,
			"port":     cfg.ServerPort,
			"data_url": baseURL,
			"kafka":    cfg.KafkaEnabled,
			"mirror":   cfg.RedisMirrorEnabled,
		}).Info("Vitals service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down vitals service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Vitals service stopped")
}
