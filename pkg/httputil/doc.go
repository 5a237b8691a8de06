// Package httputil provides transport helpers shared by the HTTP-based
// directory backends.
//
// [Policy.Do] retries an operation with exponential backoff. Only errors
// wrapped with [Retryable] are retried; anything else is returned at once,
// so callers decide per response which failures are transient:
//
//	err := httputil.DefaultPolicy.Do(ctx, func(ctx context.Context) error {
//	    resp, err := client.Do(req.WithContext(ctx))
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// [CheckStatus] maps response codes onto that convention: 5xx responses are
// retryable, other non-2xx responses are not.
package httputil
