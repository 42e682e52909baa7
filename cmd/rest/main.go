package main

import (
	"context"
	"log"

	"github.com/Wollie333/vilo-sub013/internal/bootstrap"
	"github.com/Wollie333/vilo-sub013/internal/config"
	"github.com/Wollie333/vilo-sub013/internal/server"
	"github.com/Wollie333/vilo-sub013/internal/tracer"
	"github.com/Wollie333/vilo-sub013/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Logger.Sync()

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
