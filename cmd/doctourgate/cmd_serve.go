package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/DoctourGate/pkg/infra/logger"
	"github.com/NeuralTrust/DoctourGate/pkg/server"
	"github.com/NeuralTrust/DoctourGate/pkg/server/router"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const docsFile = "./docs/swagger.json"

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.GetConfig()

	log, err := infraLogger.NewLogger(infraLogger.Options{Component: "doctourgate", Level: logLevel})
	if err != nil {
		return err
	}
	defer log.Close()
	logger := log.Logger

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:       cfg,
		Logger:    logger,
		RulesPath: rulesPath,
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return err
	}
	defer container.Close()

	if cfg.Server.SecretKey == "" {
		logger.Warn("server.secret_key is empty, admin endpoints will reject every request")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container.Start(ctx)

	docs := docsFile
	if _, err := os.Stat(docs); err != nil {
		docs = ""
	}

	apiServer := server.NewAPIServer(server.APIServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewAPIRouter(container.MiddlewareTransport, container.HandlerTransport, container.WSHandlerTransport),
		},
	})
	adminServer := server.NewAdminServer(server.AdminServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewAdminRouter(container.MiddlewareTransport, container.HandlerTransport, docs),
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range []server.Server{apiServer, adminServer} {
		g.Go(srv.Run)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		var shutdownErr error
		for _, srv := range []server.Server{apiServer, adminServer} {
			if err := srv.Shutdown(); err != nil {
				logger.WithError(err).Error("error shutting down server")
				shutdownErr = err
			}
		}
		return shutdownErr
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.WithError(err).Error("server failed")
		return err
	}
	logger.Info("servers gracefully stopped")
	return nil
}
