// Package httputil provides retry and response classification helpers for
// HTTP clients of the ClawdSign API.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for errors
// wrapped in [RetryableError]:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Status classification
//
// [CheckStatus] treats 2xx as success, 5xx and 429 as retryable failures and
// every other status as a permanent [StatusError].
package httputil
