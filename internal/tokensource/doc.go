// Package tokensource exchanges an AMS refresh token for a new credential.
//
// The AMS backend deviates from standard OAuth2 token refresh:
//   - The refresh endpoint takes a JSON body {"refresh_token": "..."} instead of a
//     form-encoded one.
//   - It answers with the same JSON shape as login, which oauth2 parses natively.
//
// The exchange reuses golang.org/x/oauth2 with a transport that re-encodes the
// request body as JSON.
//
//	r := tokensource.NewRefresher(baseURL + "/auth/refresh")
//	cred, err := r.Refresh(ctx, refreshToken)
//
// # Custom Base Transport
//
// Configure a custom base transport for refresh requests (e.g., for proxies or tests):
//
//	r := tokensource.NewRefresher(tokenURL, tokensource.WithTransport(customTransport))
package tokensource
