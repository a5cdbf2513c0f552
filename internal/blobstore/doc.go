// Package blobstore is a SQLite-backed named-blob document store: put and
// get raw bytes by name. The raster layer uses it as the document-store
// backend for binary grid blobs; it knows nothing about grids itself.
package blobstore
