package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/qubitbot/qubit/internal/bot"
	"github.com/qubitbot/qubit/internal/config"
	"github.com/qubitbot/qubit/internal/gateway/discord"
	"github.com/qubitbot/qubit/internal/handlers"
	"github.com/qubitbot/qubit/internal/infra"
	"github.com/qubitbot/qubit/internal/ledger"
	"github.com/qubitbot/qubit/internal/lifecycle"
	"github.com/qubitbot/qubit/internal/moderation"
	"github.com/qubitbot/qubit/internal/observability"
	"github.com/qubitbot/qubit/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatalln("cant load config")
	}
	log.SetFormatter(&config.QbFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.WithError(err).Fatalln("cant load policy")
	}

	workDir := infra.GetWorkDir(cfg.DotPath)
	snap := ledger.NewSnapshotter(workDir)

	offenses, err := ledger.NewOffenseLedger(snap)
	if err != nil {
		log.WithError(err).Fatalln("cant load offense ledger")
	}
	levels, err := ledger.NewLevelingLedger(snap, policy.Leveling)
	if err != nil {
		log.WithError(err).Fatalln("cant load leveling ledger")
	}
	prefixes, err := ledger.NewPrefixStore(snap, policy.DefaultPrefix)
	if err != nil {
		log.WithError(err).Fatalln("cant load prefix store")
	}

	gw, err := discord.New(cfg.DiscordAPIToken)
	if err != nil {
		log.WithError(err).Fatalln("cant initialize gateway")
	}

	sched := scheduler.New()
	service := bot.NewService(gw, gw, offenses, levels, prefixes, sched, policy)

	engine := moderation.NewEngine(gw, sched, policy)
	classifier := moderation.NewClassifier(policy.BannedTerms)
	window := moderation.NewWindow(policy.Spam.Threshold, policy.Spam.Interval.Unwrap())

	dispatcher := bot.NewDispatcher(service, classifier, window, engine)
	dispatcher.SetRouter(handlers.NewRouter(service))
	gw.AttachDispatcher(dispatcher)

	runtime := lifecycle.NewRuntime()
	runtime.Register("scheduler", sched)
	runtime.Register("metrics", observability.NewMetricsServer(cfg.MetricsAddr))
	runtime.Register("gateway", gw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runtime.Start(ctx); err != nil {
		log.WithError(err).Fatalln("cant start runtime")
	}
	log.Info("serving events")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		select {
		case sig := <-signals:
			log.WithField("signal", sig.String()).Info("shutting down")
			cancel()
		case <-groupCtx.Done():
		}
		return nil
	})
	_ = group.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := runtime.Stop(stopCtx); err != nil {
		log.WithError(err).Error("unclean shutdown")
	}
}
