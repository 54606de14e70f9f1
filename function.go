package mcqshelper

import (
	"net/http"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/gorilla/mux"

	"github.com/bartoszbak/mcqs-helper/internal/config"
	"github.com/bartoszbak/mcqs-helper/internal/handlers"
	"github.com/bartoszbak/mcqs-helper/internal/logging"
)

var (
	routerOnce sync.Once
	router     *mux.Router
	routerErr  error
)

func init() {
	// Register HTTP function for Cloud Functions deployments
	functions.HTTP("RelayRequest", RelayRequest)
}

// RelayRequest is the Cloud Functions entrypoint. It serves the same
// routes as cmd/server through a router built once per instance, so the
// rate-limit counters survive across requests to the same instance.
func RelayRequest(w http.ResponseWriter, r *http.Request) {
	routerOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			routerErr = err
			return
		}
		router = handlers.NewServer(cfg).SetupRoutes()
	})

	if routerErr != nil {
		logging.GetLogger().Errorf("Failed to load configuration: %v", routerErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	router.ServeHTTP(w, r)
}
