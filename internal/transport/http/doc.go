// Package http implements the HTTP handlers of the fielddash web service.
// Handlers stay thin: they parse and validate the request, call the service
// layer and format the response.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService → session.Store
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Responses
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "data": ...}
//
// A chart or export request without a column or measurement selection is
// still a success; its data carries status "selection_required" and the
// message to show the user. Export artifacts are written as attachments.
//
// # Error Handling
//
// All errors are rendered by errors.ErrorHandler as RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/workbook/missing-sheet",
//	    "title": "Missing Sheet",
//	    "status": 422,
//	    "detail": "file \"jan.xlsx\": missing sheet \"FL\"",
//	    "instance": "/api/sessions/6f1c.../uploads",
//	    "sheet": "FL",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
