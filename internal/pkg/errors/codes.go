package errors

import "net/http"

var (
	ErrActivityNotFound = New(
		"ACTIVITY_NOT_FOUND",
		"Activity not found",
		http.StatusNotFound,
	)

	ErrInvalidActivityID = New(
		"INVALID_ACTIVITY_ID",
		"Invalid activity ID",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidZoom = New(
		"INVALID_ZOOM",
		"Invalid zoom level",
		http.StatusBadRequest,
	)

	ErrInvalidTileCoordinates = New(
		"INVALID_TILE_COORDINATES",
		"Invalid tile coordinates",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrUnsupportedFormat = New(
		"UNSUPPORTED_FORMAT",
		"Unsupported activity file format",
		http.StatusBadRequest,
	)

	ErrImportFailed = New(
		"IMPORT_FAILED",
		"Failed to import activity file",
		http.StatusUnprocessableEntity,
	)

	ErrEmptyTrack = New(
		"EMPTY_TRACK",
		"Activity file contains no usable track points",
		http.StatusUnprocessableEntity,
	)

	ErrStravaUnavailable = New(
		"STRAVA_UNAVAILABLE",
		"Strava API request failed",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
