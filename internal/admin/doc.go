// Package admin provides the HTTP client for a gateway Admin API.
//
// A Client owns the base URL and the optional bearer credential, and funnels
// every call through Request, which classifies failures into three kinds:
//
//   - *UpstreamError: the Admin API answered with a non-2xx status
//   - *NetworkError: no response was received
//   - *RequestError: the request could not be built
//
// Use errors.Is with ErrUpstream, ErrNetwork or ErrRequest, or errors.As with
// the concrete types, to tell them apart. No call is retried.
//
// Successful responses are returned as RawJSON, an opaque JSON value that
// callers decode only when they need typed access.
//
// Example:
//
//	client, err := admin.New(admin.Config{
//		BaseURL: "http://localhost:8001",
//		Token:   os.Getenv("KONG_ADMIN_TOKEN"),
//	})
//	if err != nil {
//		return err
//	}
//	status, err := client.GetStatus(ctx)
package admin
