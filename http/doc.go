// Package http provides the HTTP surface of the country gallery.
//
// It exposes the JSON upload API, serves stored files with range support and
// hosts the embedded web pages.
//
// # Routes
//
//	POST   /api/upload/{country}                 multipart field "files"
//	GET    /api/files/{country}                  list with canEditCaption
//	GET    /api/files/{country}/{filename}       raw file bytes
//	DELETE /api/files/{country}/delete/{fileId}  uploader only
//	GET    /api/countries                        country registry
//	GET    /metrics                              Prometheus metrics
//	GET    /                                     world map page
//	GET    /country/{slug}                       gallery page
//
// Any other /api path answers 404 with {"success":false,"error":"API endpoint not found"}.
//
// # Identity
//
// Clients identify themselves with the X-User-ID header. The value is opaque
// and never verified. An upload without it is attributed to a freshly issued
// identifier, which is echoed back in the X-User-ID response header.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    CORS:                http.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
//	    UploadRatePerMinute: 30,
//	    Metrics:             true,
//	    Pages:               web.Pages(),
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	router := handler.Router()
//
// # Errors
//
// Every failure is written as {"success":false,"error":"..."}. HandleError maps
// the gallery sentinel errors to status codes:
//
//	gallery.ErrInvalidInput  400
//	gallery.ErrForbidden     403
//	gallery.ErrNotFound      404
//	gallery.ErrTooLarge      413
//	gallery.ErrStorageFull   500
package http
