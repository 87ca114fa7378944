// Package http implements the HTTP and WebSocket handlers of the real estate
// dashboard. Handlers parse and validate requests, call the dataset and
// prediction services, and format responses. They hold no analysis logic.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → dataprocessing / prediction
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Routes
//
//	/api/health, /api/version        HealthHandler
//	/api/pages                       PagesHandler (embedded content/pages.yaml)
//	/api/eda                         EDAHandler
//	/api/prediction                  PredictionHandler
//	/ws/predict                      PredictionHandler.Stream
//	/metrics                         MetricsHandler
//
// # Filters
//
// The EDA views share one filter parsed by EDAHandler.QueryCtx:
//
//	year_min, year_max   inclusive year range; omitted bounds use the dataset bounds
//	types                property types, repeated or comma separated; omitted means all,
//	                     present but empty means none
//	column               sale_amount or assessed_value
//	bins                 histogram bin count
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/prediction/unknown-category",
//	    "title": "Unknown Category",
//	    "status": 422,
//	    "detail": "unknown Property Type \"Castle\"",
//	    "instance": "/api/prediction"
//	}
//
// # WebSocket
//
// /ws/predict carries one PredictionReply per inbound message. Failed
// messages get a reply of type "error" holding the same problem document
// the HTTP endpoint would return; the session stays open.
package http
