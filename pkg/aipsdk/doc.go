/*
Package aipsdk provides a client SDK for the Baidu AI platform face recognition API.

# Overview

The aipsdk package wraps the face API v2 endpoints (detect, match, identify,
verify, user and group management). Every request is authorized twice: with an
OAuth2 access token obtained through the client-credentials grant, and with a
bce-auth-v1 signature computed by package bce.

	client := aipsdk.New(appID, apiKey, secretKey)
	defer client.Close()

	res := client.IdentifyUser(ctx, "group3", imageBase64, nil)
	if msg, failed := res.Err(); failed {
		return fmt.Errorf("identify: %s", msg)
	}

# Results

Endpoint methods never return an error. They return a Result, which is the
decoded JSON body as sent by the API (business errors included, as
error_code/error_msg), or a Result holding a single "error" key when the call
failed before the API could answer: the token could not be obtained, the
connection failed or the request timed out. JSON numbers are kept as
json.Number so that large identifiers such as log_id survive decoding.

Callers that prefer typed errors use Client.Call, which returns *AuthError,
*TransportError, *ValidationError or *APIError:

	res, err := client.Call(ctx, "identify", url, payload)
	var terr *aipsdk.TransportError
	if errors.As(err, &terr) && terr.Timeout() {
		// retry later
	}

# Token Lifecycle

The TokenManager fetches a token on first use and caches it. A cached token is
reused until 30 seconds before its nominal expiry (SafetyMargin). A failed
fetch returns an *AuthError and leaves the previously cached token in place;
it is never handed out as if the fetch had succeeded. When the API rejects a
token (error codes 110 and 111) the cache is dropped and the next call fetches
a new one. The SDK does not retry.

	tok, err := client.Tokens().EnsureValid(ctx, true) // force a refresh

# Transport

Without WithHTTPClient the client creates its own *http.Client on first use,
with request logging (package slogx) and optional rate limiting (package
httpx). Close releases its idle connections. Every call is bounded by
DefaultTimeout unless WithTimeout says otherwise.

# Thread Safety

Client and TokenManager are safe for concurrent use. Goroutines holding a
valid token are never blocked by a refresh in progress.
*/
package aipsdk
