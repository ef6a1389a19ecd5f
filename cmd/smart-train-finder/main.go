package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	trainfinder "github.com/denizpo/smart-train-finder"
	"github.com/denizpo/smart-train-finder/config"
	"github.com/denizpo/smart-train-finder/dbapi"
	"github.com/denizpo/smart-train-finder/journey"
	"github.com/denizpo/smart-train-finder/stations"
	"github.com/denizpo/smart-train-finder/timetable"
	"github.com/denizpo/smart-train-finder/warmer"
)

func main() {
	trainfinder.InitLogging()

	// .env is optional; real deployments set the variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	creds, err := config.CredentialsFromEnv()
	if err != nil {
		log.Fatalf("credentials: %v", err)
	}

	throttle := dbapi.NewThrottle(time.Duration(cfg.API.MinIntervalMS) * time.Millisecond)
	client := dbapi.NewClient(cfg.API.BaseURL, dbapi.Credentials{
		ClientID: creds.ClientID,
		APIKey:   creds.APIKey,
	}, time.Duration(cfg.API.TimeoutMS)*time.Millisecond, throttle)

	cache := timetable.NewCache(client, time.Duration(cfg.Cache.StalenessHours)*time.Hour)
	resolver := stations.NewResolver(client)
	engine := journey.NewEngine(cache, resolver, cfg.Route.TransferStations)

	origin := journey.Station{EVA: cfg.Route.Origin.EVA, Name: cfg.Route.Origin.Name}
	destination := journey.Station{EVA: cfg.Route.Destination.EVA, Name: cfg.Route.Destination.Name}

	ctx, cancel := context.WithCancel(context.Background())
	w := warmer.New(engine, cache, resolver, origin, destination, journey.Options{
		MaxTransfers:           cfg.Search.MaxTransfers,
		MaxStops:               cfg.Search.MaxStops,
		MaxDurationMinutes:     cfg.Search.MaxDurationMinutes,
		MaxLookaheadHours:      cfg.Search.MaxLookaheadHours,
		MaxTransferWaitMinutes: cfg.Search.MaxTransferWaitMinutes,
		MaxResults:             cfg.Search.MaxResults,
	}, time.Duration(cfg.Cache.WarmBehindHours)*time.Hour, time.Duration(cfg.Cache.WarmAheadHours)*time.Hour)
	go w.Run(ctx)

	app := &trainfinder.App{Cfg: cfg, Finder: engine}
	app.Start()
	app.HandleGracefulShutdown(cancel)
}
