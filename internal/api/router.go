package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/Joseph-hackathon/Lucid-solana/docs"
	"github.com/Joseph-hackathon/Lucid-solana/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(svc handler.CapsuleService, logger *zap.Logger) http.Handler {
	capsuleHandler := handler.NewCapsuleHandler(svc, logger)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Prometheus
	mux.Handle("/metrics", promhttp.Handler())

	// Capsule endpoints
	mux.HandleFunc("/capsules/stats", capsuleHandler.Stats)
	mux.HandleFunc("/capsules/ledger", capsuleHandler.Ledger)
	mux.HandleFunc("/capsules/snapshot", capsuleHandler.Snapshot)
	mux.HandleFunc("/capsules/history", capsuleHandler.History)
	mux.HandleFunc("/capsules/activity", capsuleHandler.Activity)

	return mux
}
