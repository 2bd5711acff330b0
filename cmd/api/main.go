package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "pawnloan-ledger/internal/adapter/http"
	ledgermw "pawnloan-ledger/internal/adapter/middleware"
	repo "pawnloan-ledger/internal/adapter/repository/mysql"
	"pawnloan-ledger/internal/config"
	"pawnloan-ledger/internal/infrastructure/cache"
	"pawnloan-ledger/internal/infrastructure/db"
	"pawnloan-ledger/internal/logger"
	"pawnloan-ledger/internal/scheduler"
	ucborrower "pawnloan-ledger/internal/usecase/borrower"
	uccontract "pawnloan-ledger/internal/usecase/contract"
	ucdue "pawnloan-ledger/internal/usecase/due"
	ucpayment "pawnloan-ledger/internal/usecase/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config")
	}
	loc, _ := cfg.Location()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), db.Options{Log: log, LogLevel: db.LogLevel(log.GetLevel())})
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis")
	}

	// repositories + usecases
	borrowers := repo.NewBorrowerRepository(gdb)
	contracts := repo.NewContractRepository(gdb)
	schedules := repo.NewScheduleRepository(gdb)
	tx := repo.NewGormUoW(gdb)

	borrowerUC := ucborrower.NewUsecase(borrowers, log)
	contractUC := uccontract.NewUsecase(borrowers, contracts, schedules, tx, log)
	paymentUC := ucpayment.NewUsecase(tx, log).WithClock(time.Now, loc)
	dueUC := ucdue.NewUsecase(borrowers, contracts, schedules, log).WithClock(time.Now, loc)

	jobs := scheduler.New(loc, log)
	if cfg.OverdueSweepCron != "" {
		if _, err := jobs.AddOverdueSweep(cfg.OverdueSweepCron, dueUC); err != nil {
			log.WithError(err).Fatal("scheduler")
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.RequestID(), ledgermw.RequestLogger(log), middleware.Recover())

	httpadp.Register(e, httpadp.Routes{
		Health: httpadp.NewHandler(map[string]httpadp.Pinger{
			"db":    httpadp.PingFunc(db.Ping(gdb)),
			"redis": httpadp.PingFunc(cache.Ping(rdb)),
		}),
		Borrowers:   httpadp.NewBorrowerHandler(borrowerUC),
		Contracts:   httpadp.NewContractHandler(contractUC),
		Payments:    httpadp.NewPaymentHandler(paymentUC),
		Due:         httpadp.NewDueHandler(dueUC),
		Auth:        ledgermw.BearerAuth([]byte(cfg.JWTSecret)),
		Idempotency: ledgermw.Idempotency(rdb, cfg.IdempotencyTTL(), log),
	})

	jobs.Start()

	addr := ":" + cfg.AppPort
	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	jobs.Stop(ctx)
	_ = rdb.Close()
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("stopped")
}
