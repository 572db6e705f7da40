package main

import (
	"net/http"

	"atlas-asset-api/internal"
	"atlas-asset-api/internal/config"

	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.WithError(err).Fatal("Configuration error")
	}

	srv := internal.NewServer(cfg.DatabaseDSN, cfg, log)

	log.WithFields(logrus.Fields{
		"addr":     cfg.ListenAddr,
		"issuer":   cfg.JWTIssuer,
		"audience": cfg.JWTAudience,
		"expiry":   cfg.JWTExpiry.String(),
	}).Info("Starting Atlas Asset API server")

	log.Fatal(http.ListenAndServe(cfg.ListenAddr, srv.Router))
}
