/*
Package lmsclient is the client for the LMS admin backend used by the console.

# Overview

A Client sends requests to the backend's REST API with the current session
token attached as a bearer credential, and recovers from an expired token by
refreshing it once for every request that failed at the same time.

	client := lmsclient.NewClient("https://lms.example.com/api",
		lmsclient.WithStorage(store),
		lmsclient.WithRedirector(lmsclient.RedirectFunc(func(ctx context.Context, cause error) {
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
		})),
	)

	// Pick up a session persisted by an earlier run
	if err := client.Tokens().Load(ctx); err != nil { ... }

	// Or start a new one
	_, err := client.Login(ctx, "admin@example.com", password)

	courses, err := client.ListCourses(ctx)

# Token Store

The TokenStore keeps the session token, the user's role and an optional
refresh credential. Reads never block; writes go through to a Storage
implementation under the keys KeyToken, KeyRole and KeyRefreshToken.
MemoryStorage is included; persistent backends live in the storage packages
of this module.

# Token Refresh

When a request is answered with 401 Unauthorized the client does not fail it
straight away:

 1. If no refresh is running, the request starts one: POST /auth/refresh is
    called directly on the HTTP client, bypassing the refresh logic.
 2. If a refresh is already running, the request waits for its outcome.
 3. On success the new token is stored and every waiting request is sent
    again with it, in the order they queued. Each request is retried once.
 4. On failure every waiting request fails with a *RefreshError, the session
    is cleared and the LoginRedirector is called once.

A request that is still rejected after its retry fails with an *APIError
that matches ErrUnauthorized; it does not start another refresh.

The refresh call is bounded by WithRefreshTimeout (DefaultRefreshTimeout if
unset) and is not cancelled when the request that triggered it is.

# Errors

  - Transport errors are returned wrapped, unretried.
  - ErrUnauthorized: 401 after a refresh and retry.
  - ErrSessionExpired: the refresh failed; the user must log in again.
  - *APIError: any other non-2xx status from a typed call. Do returns those
    responses unchanged.
*/
package lmsclient
