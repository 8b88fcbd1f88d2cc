package main

import (
	"os"

	"github.com/DRSN-tech/storefront/internal/app"
	config "github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

//	@title						Storefront API
//	@version					1.0
//	@description				Каталог, корзина, оформление заказов и админка магазина
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	StaffToken
//	@in							header
//	@name						Authorization
func main() {
	logCfg := config.LoadLogCfg()
	log := logger.NewSlogLoggerWithConfig(logger.Config{
		Level:      logCfg.Level,
		FilePath:   logCfg.FilePath,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	})

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
