// Package gallery provides the upload and metadata core of a per-country
// file gallery.
//
// Files are stored on a pluggable FileStorage under one directory per country,
// and their records are kept in a single metadata document (MetadataStore)
// mapping each country slug to its ordered list of FileRecord entries.
//
// # Key Components
//
//   - GalleryService: upload, list, open, delete and rebuild operations
//   - CountryRegistry: immutable slug → country table, loaded from YAML
//   - MetadataStore: persistence of the full Index (see package metadata)
//   - FileStorage: file operations (see package filesystem)
//
// # Ownership
//
// Every record carries the opaque uploader identifier the client sent in the
// X-User-ID header. Only a caller presenting the same identifier can delete
// the record. The identifier is not authenticated.
//
// # Example Usage
//
//	service, err := gallery.NewGalleryService(gallery.DefaultCountries(), meta, storage, gallery.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	parts := gallery.SliceParts{{Filename: "beach.jpg", ContentType: "image/jpeg", Content: r}}
//	records, err := service.Upload(ctx, "spain", "user-123", &parts)
//
//	files, err := service.List(ctx, "spain", "user-123")
//
// See the http package for the REST API.
package gallery
