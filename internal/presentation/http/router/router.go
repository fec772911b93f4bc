package router

import (
	"net/http"

	"menu-to-app/internal/presentation/di"
	"menu-to-app/internal/presentation/http/middleware"
)

// NewRouter 新しいルーターを作成
func NewRouter(container *di.Container) http.Handler {
	mux := http.NewServeMux()

	// Ingress: 画像アップロード
	mux.Handle("/upload", container.UploadHandler())

	// Catalog API
	catalogHandler := container.CatalogHandler()
	mux.HandleFunc("/api/v1/menu", catalogHandler.HandleMenu)
	mux.HandleFunc("/api/v1/menu/export.xlsx", catalogHandler.HandleExport)

	// Health check
	mux.Handle(middleware.HealthPath, container.HealthHandler())

	// ミドルウェアの適用（外側から RequestID → Recovery → Logger → CORS）
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.LoggerWithHealthCheck(h)
	h = middleware.Recovery(h)
	h = middleware.RequestID(h)

	return h
}
