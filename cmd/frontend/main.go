package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/kubelearn/internal/frontend"
	"github.com/dmitrijs2005/kubelearn/internal/frontend/config"
	"github.com/gin-gonic/gin"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := frontend.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
