// Package docs tilescout API.
//
// Personal outdoor activity analytics service. Imports activities from GPX
// and FIT files or the Strava API and serves activity maps, explorer tile
// coverage, heatmap overlay tiles and aggregate statistics.
//
// Main features:
// - Activity list and per-activity pages with speed-colored track maps
// - Heart rate zone plots when the recording carries heart rate data
// - Explorer tile summary with cluster and largest-square detection
// - Explored and missing tile overlays, downloadable as GeoJSON or GPX
// - Heatmap PNG overlay tiles rendered from all stored track points
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//	- multipart/form-data
//
//	Produces:
//	- application/json
//	- application/geo+json
//	- application/gpx+xml
//	- image/png
//	- text/html
//
// swagger:meta
package docs
