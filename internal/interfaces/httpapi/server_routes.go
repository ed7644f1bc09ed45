package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerIngestionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/ingestion/state", handler.GetIngestionState)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/ingest", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunIngestJob)))
}
