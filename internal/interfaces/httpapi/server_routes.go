package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler == nil {
		return
	}

	mux.Handle("GET /metrics", metricsHandler)
}

func registerUploadRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/uploads", handler.UploadRoster)
	mux.HandleFunc("GET /v1/uploads/{uploadID}", handler.GetUpload)
	mux.HandleFunc("DELETE /v1/uploads/{uploadID}", handler.DeleteUpload)
	mux.HandleFunc("GET /v1/uploads/{uploadID}/roster", handler.ListRoster)
	mux.HandleFunc("GET /v1/uploads/{uploadID}/free-agents", handler.ListFreeAgents)
}

func registerProjectionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/projections/{horizon}/lookup", handler.LookupProjection)
	mux.HandleFunc("GET /v1/projections/{horizon}/top", handler.TopProjections)
	mux.HandleFunc("POST /v1/projections/{horizon}/enrich", handler.EnrichPlayers)
	mux.HandleFunc("POST /v1/projections/{horizon}/refresh", handler.RefreshProjections)
}
