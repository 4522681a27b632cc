// Package qr derives QR-image URLs for short links.
//
// No QR rendering happens in-process: the returned string points at a
// third-party rendering service that clients fetch themselves.
package qr

import (
	"net/url"
	"strings"
)

// Endpoint is the third-party QR rendering service.
const Endpoint = "https://api.qrserver.com/v1/create-qr-code/"

// imageSize is the rendered image size requested from the service.
const imageSize = "150x150"

// Derive returns the QR-image URL for a short code.
//
// The encoded payload is the canonical redirect URL {baseURL}/r/{code},
// percent-encoded as the data query parameter. Deterministic; no network
// call is made.
func Derive(baseURL, code string) string {
	target := strings.TrimSuffix(baseURL, "/") + "/r/" + code

	q := url.Values{}
	q.Set("size", imageSize)
	q.Set("data", target)

	return Endpoint + "?" + q.Encode()
}
