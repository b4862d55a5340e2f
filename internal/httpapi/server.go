package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediaplayer/internal/app/library"
	"mediaplayer/internal/auth"
	"mediaplayer/internal/notices"
	"mediaplayer/internal/store"
	"mediaplayer/shared/go/middleware"
	"mediaplayer/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, email, password string) (store.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, token string) (auth.User, error)
	SignOut(ctx context.Context) error
}

// LibraryService exposes the media library operations.
type LibraryService interface {
	Snapshot() library.State
	AddLocalMedia(files []library.LocalFile) []models.MediaItem
	AddYouTube(rawURL, title string) (models.MediaItem, error)
	RemoveItem(itemID string) bool
	CreatePlaylist(ctx context.Context, name string) (models.Playlist, error)
	SwitchPlaylist(playlistID string) bool
	Play(itemID string) bool
	TogglePlayPause() bool
	SetPlaying(playing bool) bool
	Next() bool
	Previous() bool
	ItemEnded()
	MarkLoaded(itemID string, durationSeconds float64) bool
}

// NoticeService hands pending user notices to the client.
type NoticeService interface {
	Drain() []notices.Notice
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	library   LibraryService
	notices   NoticeService
	blobs     http.Handler
	maxUpload int64
}

// New configures a Server. maxUpload bounds multipart uploads in bytes.
func New(users UserService, library LibraryService, notices NoticeService, blobs http.Handler, maxUpload int64) *Server {
	return &Server{
		users:     users,
		library:   library,
		notices:   notices,
		blobs:     blobs,
		maxUpload: maxUpload,
	}
}

// Routes exposes the HTTP handlers for accounts, the library and local media.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/session", s.handleSignIn)
	mux.HandleFunc("DELETE /api/v1/auth/session", s.handleSignOut)

	// Library
	mux.HandleFunc("GET /api/v1/library", s.handleLibrary)
	mux.HandleFunc("POST /api/v1/library/media", s.handleAddMedia)
	mux.HandleFunc("POST /api/v1/library/youtube", s.handleAddYouTube)
	mux.HandleFunc("DELETE /api/v1/library/items/{id}", s.handleRemoveItem)
	mux.HandleFunc("POST /api/v1/library/items/{id}/play", s.handlePlayItem)
	mux.HandleFunc("POST /api/v1/library/items/{id}/loaded", s.handleItemLoaded)
	mux.HandleFunc("POST /api/v1/library/playlists", s.handleCreatePlaylist)
	mux.HandleFunc("PUT /api/v1/library/current-playlist", s.handleSwitchPlaylist)
	mux.HandleFunc("PUT /api/v1/library/playing", s.handleSetPlaying)
	mux.HandleFunc("POST /api/v1/library/toggle", s.transport(func() { s.library.TogglePlayPause() }))
	mux.HandleFunc("POST /api/v1/library/next", s.transport(func() { s.library.Next() }))
	mux.HandleFunc("POST /api/v1/library/previous", s.transport(func() { s.library.Previous() }))
	mux.HandleFunc("POST /api/v1/library/ended", s.transport(s.library.ItemEnded))

	mux.HandleFunc("GET /api/v1/notices", s.handleNotices)

	if s.blobs != nil {
		mux.Handle("GET /blobs/", s.blobs)
	}

	return middleware.Metrics(func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		return pattern
	})(mux)
}

type errorResponse struct {
	Error string `json:"error"`
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
