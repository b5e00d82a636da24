package routeparser

import "github.com/NERVsystems/navengine/pkg/naverr"

// invalidStatusCode wraps an OSRM-family response whose top-level "code"
// field was not "Ok".
func invalidStatusCode(code string) *naverr.NavError {
	return naverr.Newf(naverr.CodeInvalidStatusCode, "%s", code).
		WithGuidance("the routing backend reported a non-Ok status; inspect the code and message before retrying")
}

func invalidGeometry(reason string) *naverr.NavError {
	return naverr.Newf(naverr.CodeInvalidGeometry, "%s", reason)
}

func invalidRouteObject(reason string) *naverr.NavError {
	return naverr.Newf(naverr.CodeInvalidRouteObject, "%s", reason)
}

func annotationsError(reason string) *naverr.NavError {
	return naverr.Newf(naverr.CodeAnnotationsError, "%s", reason)
}
