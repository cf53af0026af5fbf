package authority

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

// retryDo executes an HTTP request with exponential backoff retry.
// Network errors, HTTP 429 and HTTP 5xx responses are retried; other 4xx
// responses go back to the caller unretried. Requests with a body are
// buffered so the body can be replayed on each attempt. When attempts run
// out the last response is returned with its body intact, so callers can
// still read the server's final answer.
func retryDo(client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
	}

	var lastErr error
	backoff := 250 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.ContentLength = int64(len(bodyBytes))
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if !isRetryableStatus(resp.StatusCode) || attempt == maxAttempts-1 {
			return resp, nil
		}

		// Retryable status with attempts left. Drain and close the body
		// so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	return nil, lastErr
}

// isRetryableStatus reports HTTP status codes worth retrying.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
