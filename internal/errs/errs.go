// Package errs defines the error shapes returned to API clients.
//
// Every failure leaving a handler is eventually rendered as an HTTPError by
// the global error handler, so clients always receive the same JSON layout:
//
//	{
//	  "code": "BILL_NOT_PAID",
//	  "message": "Can only delete fully paid bills",
//	  "status": 403,
//	  "override": false,
//	  "errors": null,
//	  "action": {"type": "redirect", "message": "...", "value": "/bills/2024..."}
//	}
//
// Services build these errors with the New*Error constructors. Field-level
// problems found by request validation travel in Errors, and an optional
// Action tells the front end where the user can fix the problem.
package errs
