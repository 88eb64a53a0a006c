// Package remote implements the driven transport ports over the host
// platform's HTTP file API.
//
// TokenClient implements driven.TokenExchanger against the provider's
// OAuth token endpoint. FileClient implements driven.FileStore against
// the file API, carrying version preconditions as If-Match headers and
// pulling access tokens from a driving.TokenProvider per request.
//
// Every non-2xx response is classified exactly once, here, via
// domain.Classify; callers only ever see *domain.RemoteError.
package remote
