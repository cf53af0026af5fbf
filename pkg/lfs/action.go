package lfs

// Action describes one step of a large object transfer: the URL to
// hit and the headers to send. It mirrors the wire shape of batch API
// transfer actions, so it can be embedded directly in responses.
type Action struct {
	HRef   string            `json:"href"`
	Header map[string]string `json:"header,omitempty"`
}
