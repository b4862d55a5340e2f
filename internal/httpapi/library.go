package httpapi

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"mediaplayer/internal/app/library"
	"mediaplayer/internal/notices"
	"mediaplayer/internal/youtube"
	"mediaplayer/shared/go/logging"
	"mediaplayer/shared/go/models"
)

// uploadField is the multipart field carrying media files.
const uploadField = "files"

type libraryResponse struct {
	library.State
	Added    []models.MediaItem `json:"added,omitempty"`
	Playlist *models.Playlist   `json:"playlist,omitempty"`
}

type youtubeRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type playlistRequest struct {
	Name string `json:"name"`
}

type switchPlaylistRequest struct {
	ID string `json:"id"`
}

type loadedRequest struct {
	Duration float64 `json:"duration"`
}

type playingRequest struct {
	Playing bool `json:"playing"`
}

func (s *Server) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, libraryResponse{State: s.library.Snapshot()})
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleAddMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File[uploadField]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no files provided"})
		return
	}

	files := make([]library.LocalFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			logging.WithContext(r.Context()).Error().Err(err).Str("file", fh.Filename).Msg("error opening upload")
			continue
		}
		defer f.Close()
		files = append(files, library.LocalFile{
			Name:        fh.Filename,
			ContentType: contentType(fh),
			Content:     f,
		})
	}

	added := s.library.AddLocalMedia(files)
	writeJSON(w, http.StatusCreated, libraryResponse{State: s.library.Snapshot(), Added: added})
}

// mediaExtensions covers media types missing from the system MIME table.
var mediaExtensions = map[string]string{
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".ogv":  "video/ogg",
	".wav":  "audio/wav",
	".webm": "video/webm",
}

// contentType prefers the declared part type and falls back to the extension.
func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return mediaExtensions[ext]
}

func (s *Server) handleAddYouTube(w http.ResponseWriter, r *http.Request) {
	var req youtubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	item, err := s.library.AddYouTube(req.URL, req.Title)
	if err != nil {
		if errors.Is(err, youtube.ErrInvalidURL) || errors.Is(err, youtube.ErrMissingVideoID) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, libraryResponse{State: s.library.Snapshot(), Added: []models.MediaItem{item}})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if !s.library.RemoveItem(r.PathValue("id")) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "item not found"})
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) handlePlayItem(w http.ResponseWriter, r *http.Request) {
	if !s.library.Play(r.PathValue("id")) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "item not found"})
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleItemLoaded(w http.ResponseWriter, r *http.Request) {
	var req loadedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.Duration < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "duration must not be negative"})
		return
	}
	if !s.library.MarkLoaded(r.PathValue("id"), req.Duration) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "item not found"})
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	playlist, err := s.library.CreatePlaylist(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrInvalidName):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, library.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, libraryResponse{State: s.library.Snapshot(), Playlist: &playlist})
}

func (s *Server) handleSwitchPlaylist(w http.ResponseWriter, r *http.Request) {
	var req switchPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if !s.library.SwitchPlaylist(req.ID) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "playlist not found"})
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) handleSetPlaying(w http.ResponseWriter, r *http.Request) {
	var req playingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	s.library.SetPlaying(req.Playing)
	s.writeState(w, http.StatusOK)
}

// transport adapts a state-only library call into a handler answering with
// the resulting state.
func (s *Server) transport(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn()
		s.writeState(w, http.StatusOK)
	}
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Notices []notices.Notice `json:"notices"`
	}{Notices: s.notices.Drain()})
}
