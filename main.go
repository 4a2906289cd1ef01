package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"mediafeed/backend/api/middleware"
	"mediafeed/backend/api/route"
	"mediafeed/backend/common"
	"mediafeed/backend/model"
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()
	if *common.PrintVersion {
		println(common.Version)
		os.Exit(0)
	}
	if *common.PrintHelpFlag {
		common.PrintHelp()
		os.Exit(0)
	}
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := common.LoadConfig(); err != nil {
		// the logger is not configured yet
		println("failed to load config: " + err.Error())
		os.Exit(1)
	}
	if err := common.SetupLogger(common.LogLevel); err != nil {
		println("failed to set up logger: " + err.Error())
		os.Exit(1)
	}
	defer common.SyncLog()
	common.SetupGinLog()
	common.SysLog("mediafeed started", "version", common.Version)

	if err := common.InitRedisClient(); err != nil {
		common.FatalLog(err)
	}
	defer func() {
		if err := common.CloseRedisClient(); err != nil {
			common.SysError("failed to close redis", "err", err)
		}
	}()

	if err := model.InitDB(); err != nil {
		common.FatalLog(err)
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			common.SysError("failed to close database", "err", err)
		}
	}()

	var revoker service.TokenRevoker
	if common.RDB != nil {
		revoker = service.NewRedisRevoker(common.RDB)
	}
	auth, err := service.NewAuthService(service.AuthConfig{
		Secret:         common.JWTSecret,
		AccessLifetime: common.JWTLifetime,
		ResetLifetime:  common.ResetTokenLifetime,
		VerifyLifetime: common.VerifyTokenLifetime,
	}, revoker)
	if err != nil {
		common.FatalLog(err)
	}
	lander := service.NewLander(common.UploadPath, common.UploadURLPrefix)

	server := gin.Default()
	server.Use(middleware.CORS())
	server.Use(middleware.LangMiddleware())
	route.SetRouter(server, route.Services{
		Posts:  service.NewPostService(model.NewPostStore(model.DB), lander, common.DeleteRemovesFile),
		Lander: lander,
		Auth:   auth,
		Users:  service.NewUserManager(auth, service.LoggingHooks{}),
	})

	if err := serve(server); err != nil {
		common.SysError("server stopped with error", "err", err)
	}
}

// serve runs the HTTP server until SIGINT or SIGTERM, then drains it.
func serve(handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(*common.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		common.SysLog("Server listening", "port", *common.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		common.SysLog("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
