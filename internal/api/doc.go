// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package api exposes the recommendation engine and the shelf service over HTTP
using the Chi router.

Routes:

	GET    /healthz                                       health status
	GET    /metrics                                       Prometheus metrics
	GET    /api/v1/users/{id}/recommendations?limit=      flat list
	GET    /api/v1/users/{id}/recommendations/mixed       local vs. external split
	GET    /api/v1/users/{id}/shelf/personalized?size=    curated shelf view
	POST   /api/v1/users/{id}/shelf                       add a book {book_id, shelf}
	PUT    /api/v1/users/{id}/shelf/{bookID}              move a book {shelf}
	POST   /api/v1/users/{id}/shelf/{bookID}/complete     mark as read
	DELETE /api/v1/users/{id}/shelf/{bookID}              remove a book
	PUT    /api/v1/users/{id}/preferences                 replace interests {interests}
	POST   /api/v1/users/{id}/books/{bookID}/view         record a book view

Every JSON response uses the models.APIResponse envelope. Validation failures
return 400 with code VALIDATION_ERROR; unknown books and missing shelf
entries return 404; adding a book that is already shelved returns 409.

Middleware order for /api/v1: request ID and logging context, real IP, panic
recovery, Prometheus metrics, per-IP rate limiting (go-chi/httprate),
security headers, gzip compression.
*/
package api
