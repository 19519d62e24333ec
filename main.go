package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/api"
	"github.com/kasirpos/kasir/internal/app"
	"github.com/kasirpos/kasir/internal/webserver"
	"go.uber.org/zap"
)

var (
	version  = "develop"
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "", "config yaml file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
	seed     = flag.Bool("seed", false, "load demo data before serving")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		os.Exit(0)
	}
	if *h {
		flag.Usage()
		os.Exit(0)
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init application: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *initdb {
		if err := application.InitDb(); err != nil {
			zap.S().Fatalf("init database: %v", err)
		}
		zap.S().Info("database initialized")
		return
	}

	if *seed {
		if err := application.Seed(); err != nil {
			zap.S().Errorf("seed demo data: %v", err)
		}
	}

	srv := webserver.New(cfg, application.Identity(), webserver.Options{DisableMetrics: !cfg.Web.Metrics})
	srv.Public(http.MethodGet, "/healthz", application.HealthHandler())
	api.Register(srv, application.Services(), application.Store().Audit())

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("web server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("shutdown", zap.Error(err))
	}
}
