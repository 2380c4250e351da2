package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/bookmark"
	"github.com/mateconpizza/sbm/pkg/db"
)

// bookmarkResponse is the API form of a bookmark.
type bookmarkResponse struct {
	ID          int64    `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func newBookmarkResponse(b *bookmark.Bookmark) bookmarkResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}

	return bookmarkResponse{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Desc,
		Tags:        tags,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (s *Server) apiListBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := queryInt(q.Get("limit"), service.DefaultQueryLimit)
	if err != nil {
		encodeErr(w, http.StatusUnprocessableEntity, "invalid limit")
		return
	}

	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		encodeErr(w, http.StatusUnprocessableEntity, "invalid offset")
		return
	}

	u := userFrom(r.Context())

	bs, err := s.bookmarks.Query(r.Context(), u.ID, q.Get("tag"), limit, offset)
	if err != nil {
		slog.Error("api: listing bookmarks", "error", err)
		encodeErr(w, http.StatusInternalServerError, err.Error())

		return
	}

	out := make([]bookmarkResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, newBookmarkResponse(b))
	}

	encode(w, http.StatusOK, out)
}

func queryInt(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}

	return strconv.Atoi(v)
}

func (s *Server) apiAddBookmark(w http.ResponseWriter, r *http.Request) {
	var nb service.NewBookmark
	if err := json.NewDecoder(r.Body).Decode(&nb); err != nil {
		encodeErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			slog.Error("api: closing request body", "error", err)
		}
	}()

	u := userFrom(r.Context())

	b, err := s.bookmarks.Add(r.Context(), u.ID, nb)
	switch {
	case err == nil:
		encode(w, http.StatusCreated, newBookmarkResponse(b))
	case errors.Is(err, db.ErrRecordDuplicate):
		encodeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, bookmark.ErrInvalid), errors.Is(err, bookmark.ErrURLEmpty):
		encodeErr(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("api: adding bookmark", "error", err)
		encodeErr(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) apiDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		encodeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	u := userFrom(r.Context())
	if err := s.bookmarks.Delete(r.Context(), u.ID, id); err != nil {
		if service.IsNotFound(err) {
			encodeErr(w, http.StatusNotFound, "Bookmark not found")
			return
		}

		slog.Error("api: deleting bookmark", "id", id, "error", err)
		encodeErr(w, http.StatusInternalServerError, err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiTags(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	tags, err := s.bookmarks.TagCloud(r.Context(), u.ID)
	if err != nil {
		slog.Error("api: tag cloud", "error", err)
		encodeErr(w, http.StatusInternalServerError, err.Error())

		return
	}

	if tags == nil {
		tags = []db.TagCount{}
	}

	encode(w, http.StatusOK, tags)
}
