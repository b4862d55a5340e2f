// Package youtube recognises the YouTube links accepted by the player and
// derives embed and thumbnail URLs from a video id.
package youtube

import (
	"errors"
	"strings"
)

// URL markers for the two accepted link shapes.
const (
	WatchMarker = "youtube.com/watch?v="
	ShortMarker = "youtu.be/"
)

const (
	embedPrefix     = "https://www.youtube.com/embed/"
	thumbnailPrefix = "https://img.youtube.com/vi/"
	thumbnailSuffix = "/mqdefault.jpg"
)

var (
	// ErrInvalidURL reports a link that matches neither accepted shape.
	ErrInvalidURL = errors.New("invalid YouTube URL")
	// ErrMissingVideoID reports a recognised link without a video id.
	ErrMissingVideoID = errors.New("could not extract the YouTube video id")
)

// VideoID extracts the video id from a watch or youtu.be link.
func VideoID(rawURL string) (string, error) {
	var rest, stop string
	switch {
	case strings.Contains(rawURL, WatchMarker):
		rest = rawURL[strings.Index(rawURL, WatchMarker)+len(WatchMarker):]
		stop = "&#"
	case strings.Contains(rawURL, ShortMarker):
		rest = rawURL[strings.Index(rawURL, ShortMarker)+len(ShortMarker):]
		stop = "?#"
	default:
		return "", ErrInvalidURL
	}

	if i := strings.IndexAny(rest, stop); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", ErrMissingVideoID
	}
	return rest, nil
}

// EmbedURL returns the player embed URL for a video id.
func EmbedURL(videoID string) string {
	return embedPrefix + videoID
}

// ThumbnailURL returns the medium quality preview image for a video id.
func ThumbnailURL(videoID string) string {
	return thumbnailPrefix + videoID + thumbnailSuffix
}
