package http

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sagarc03/gallery"
)

type Service interface {
	Countries() *gallery.CountryRegistry
	NewUploaderID() string
	Upload(ctx context.Context, country, uploader string, parts gallery.PartSource) ([]gallery.FileRecord, error)
	List(ctx context.Context, country, requester string) ([]gallery.ListedFile, error)
	Open(ctx context.Context, country, rawName string) (gallery.FileInfo, io.ReadSeekCloser, error)
	Delete(ctx context.Context, country, id, uploader string) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	CORS CORSConfig

	// MaxUploadBytes caps the whole upload request body. 0 means no cap
	// beyond the per-file limit enforced by the service.
	MaxUploadBytes int64

	// UploadRatePerMinute limits uploads per client IP. 0 disables limiting.
	UploadRatePerMinute int

	// Metrics enables request metrics and the /metrics endpoint.
	Metrics bool

	// Pages holds index.html, country.html and static assets. Nil disables
	// the web pages.
	Pages fs.FS

	Logger *slog.Logger
}

// Handler provides HTTP handlers for the gallery API and web pages.
type Handler struct {
	config  HandlerConfig
	service Service
	limiter *RateLimiter
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
		limiter: NewRateLimiter(config.UploadRatePerMinute),
	}
}

// Router returns an http.Handler with the API, metrics and page routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(h.config.Logger))
	r.Use(middleware.Recoverer)
	if h.config.Metrics {
		r.Use(MetricsMiddleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(h.limiter.Middleware).Post("/upload/{country}", h.handleUpload)
		r.Get("/files/{country}", h.handleList)
		r.Get("/files/{country}/{filename}", h.handleFile)
		r.Delete("/files/{country}/delete/{fileId}", h.handleDelete)
		r.Get("/countries", h.handleCountries)

		r.NotFound(handleAPINotFound)
		r.MethodNotAllowed(handleAPINotFound)
	})

	if h.config.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if h.config.Pages != nil {
		r.Get("/", h.servePage("index.html"))
		r.Get("/country/{slug}", h.servePage("country.html"))
		r.NotFound(http.FileServerFS(h.config.Pages).ServeHTTP)
	}

	return r
}

func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	slog.Debug("api route not found", "method", r.Method, "path", r.URL.Path)
	WriteError(w, http.StatusNotFound, "API endpoint not found")
}

func (h *Handler) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, h.config.Pages, name)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")

	uploader := r.Header.Get(UploaderIDHeader)
	if uploader == "" {
		uploader = h.service.NewUploaderID()
		w.Header().Set(UploaderIDHeader, uploader)
	}

	if h.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	}

	parts, err := newMultipartParts(r)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer parts.closeCurrent()

	records, err := h.service.Upload(r.Context(), country, uploader, parts)
	if err != nil {
		HandleError(w, err)
		return
	}

	var total int64
	for _, rec := range records {
		total += rec.Size
	}
	uploadedFilesTotal.WithLabelValues(country).Add(float64(len(records)))
	uploadedBytesTotal.WithLabelValues(country).Add(float64(total))

	_ = WriteJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: fmt.Sprintf("%d file(s) uploaded successfully", len(records)),
		Files:   records,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")

	files, err := h.service.List(r.Context(), country, r.Header.Get(UploaderIDHeader))
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ListResponse{Success: true, Files: files})
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	filename := chi.URLParam(r, "filename")

	info, content, err := h.service.Open(r.Context(), country, filename)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", info.ContentType)

	http.ServeContent(w, r, info.Filename, info.ModTime, content)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	fileID := chi.URLParam(r, "fileId")

	err := h.service.Delete(r.Context(), country, fileID, r.Header.Get(UploaderIDHeader))
	if err != nil {
		HandleError(w, err)
		return
	}

	deletedFilesTotal.WithLabelValues(country).Inc()

	_ = WriteJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "File deleted successfully",
	})
}

func (h *Handler) handleCountries(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, CountriesResponse{
		Success:   true,
		Countries: h.service.Countries().All(),
	})
}
