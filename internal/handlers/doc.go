// Package handlers provides HTTP request handlers for the image tagger API.
//
// It includes handlers for:
//   - Listing and filtering images
//   - Adding and removing tags on one image
//   - Renaming and deleting tags across the directory
//   - Tag suggestions and per-image tag state
//   - Catalog queries, reloads and statistics
//   - Health checks and version information
//
// [NewRouter] wires every handler into a gorilla/mux router.
package handlers
