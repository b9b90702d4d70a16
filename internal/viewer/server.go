// Read-only web viewer over the data directory

package viewer

import (
	"log"
	"net/http"
)

func Routes(h Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.Index)
	mux.HandleFunc("GET /api/files", h.ListFiles)
	mux.HandleFunc("GET /api/data/{filename}", h.FileData)
	return mux
}

func Start(addr string, handler http.Handler, logger *log.Logger) error {
	logger.Printf("🌐 Viewer listening on %s", addr)
	return http.ListenAndServe(addr, handler)
}
