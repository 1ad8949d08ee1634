// Package web holds static assets served by the API binary.
package web

import _ "embed"

// TrackJS is the embeddable tracking snippet served at /track.js.
//
//go:embed track.js
var TrackJS []byte
