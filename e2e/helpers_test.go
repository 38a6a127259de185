package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/sagarc03/gallery"
	"github.com/sagarc03/gallery/filesystem"
	galleryhttp "github.com/sagarc03/gallery/http"
	"github.com/sagarc03/gallery/metadata"
	"github.com/sagarc03/gallery/web"
	"github.com/stretchr/testify/require"
)

// ServerConfig holds the knobs an end-to-end test may turn.
type ServerConfig struct {
	StoragePath    string
	MaxFiles       int
	MaxFileSize    int64
	MaxUploadBytes int64
}

// upload is one file sent in a multipart request.
type upload struct {
	Name        string
	ContentType string
	Content     []byte
}

// startServer wires the real service, storage and router behind an
// httptest server. Returns the base URL and a cleanup function.
func startServer(t *testing.T, cfg ServerConfig) (string, func()) {
	t.Helper()

	if cfg.StoragePath == "" {
		cfg.StoragePath = t.TempDir()
	}

	root, err := os.OpenRoot(cfg.StoragePath)
	require.NoError(t, err, "open storage root")

	service, err := gallery.NewGalleryService(
		gallery.DefaultCountries(),
		metadata.NewJSONStore(root, metadata.DefaultFileName),
		filesystem.NewFileStorage(root),
		gallery.ServiceConfig{
			MaxFiles:    cfg.MaxFiles,
			MaxFileSize: cfg.MaxFileSize,
		},
	)
	require.NoError(t, err, "create service")

	handler := galleryhttp.NewHandler(&galleryhttp.HandlerConfig{
		CORS:           galleryhttp.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
		MaxUploadBytes: cfg.MaxUploadBytes,
		Pages:          web.Pages(),
	}, service)

	server := httptest.NewServer(handler.Router())

	return server.URL, func() {
		server.Close()
		_ = root.Close()
	}
}

// multipartBody encodes files under the "files" field.
func multipartBody(t *testing.T, files ...upload) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		fw, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = fw.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

// uploadRequest builds a multipart upload of files to a country as user.
func uploadRequest(t *testing.T, baseURL, country, user string, files ...upload) *http.Request {
	t.Helper()

	body, contentType := multipartBody(t, files...)
	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/upload/"+country, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if user != "" {
		req.Header.Set(galleryhttp.UploaderIDHeader, user)
	}
	return req
}

// uploadFiles posts files to a country as user and returns the response.
func uploadFiles(t *testing.T, baseURL, country, user string, files ...upload) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(uploadRequest(t, baseURL, country, user, files...))
	require.NoError(t, err)
	return resp
}

// listFiles fetches a country's listing as user.
func listFiles(t *testing.T, baseURL, country, user string) galleryhttp.ListResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/files/"+country, nil)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(galleryhttp.UploaderIDHeader, user)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out galleryhttp.ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// deleteFile sends a delete request as user.
func deleteFile(t *testing.T, baseURL, country, id, user string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, baseURL+"/api/files/"+country+"/delete/"+id, nil)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(galleryhttp.UploaderIDHeader, user)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
