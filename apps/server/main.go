package main

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"wolfsim/apps/server/internal/gateway"
	"wolfsim/apps/server/internal/ledger"
	"wolfsim/apps/server/internal/lobby"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Server] No .env file loaded: %v", err)
	}

	ledgerService, ledgerMode, err := ledger.NewServiceFromEnv()
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	addr := envOrDefault("WOLFSIM_ADDR", ":8080")
	publicURL := envOrDefault("WOLFSIM_PUBLIC_URL", "http://localhost"+addr)

	lby := lobby.New(ledgerService)
	gw := gateway.New(lby)
	gamesHTTP := lobby.NewHTTPHandler(lby, publicURL)
	historyHTTP := ledger.NewHTTPHandler(ledgerService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	gamesHTTP.RegisterRoutes(mux)
	historyHTTP.RegisterRoutes(mux)

	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] Starting on %s (public %s)", addr, publicURL)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
