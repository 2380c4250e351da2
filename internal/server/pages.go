package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/bookmark"
	"github.com/mateconpizza/sbm/pkg/db"
)

const (
	formFileField = "bookmark_file"

	// uploadOverhead is the room left in a request body for multipart
	// headers and boundaries around the bookmark file.
	uploadOverhead = 64 << 10
)

// listView is the data of the bookmark listing pages.
type listView struct {
	*service.Page
	Tags     []db.TagCount
	Error    string
	basePath string
}

// PageURL returns the link to page n of the current listing.
func (v *listView) PageURL(n int) string {
	q := url.Values{}
	if v.Tag != "" && v.basePath == "/" {
		q.Set("tag", v.Tag)
	}

	q.Set("page", strconv.Itoa(n))

	return v.basePath + "?" + q.Encode()
}

// adminView is the data of the admin dashboard.
type adminView struct {
	Stats   *service.Statistics
	Keys    []*db.APIKey
	NewKey  *service.NewAPIKey
	Success string
	Error   string
	Message string
	Query   url.Values
}

type loginView struct {
	Error string
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login", "Login", loginView{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	value, _, err := s.auth.Login(r.Context(), r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("login", "error", err)
		}

		s.render(w, r, "login", "Login", loginView{Error: "Invalid password"})

		return
	}

	http.SetCookie(w, s.sessions.Cookie(value))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.CookieName); err == nil {
		s.auth.Logout(c.Value)
	}

	http.SetCookie(w, s.sessions.ClearCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.listing(w, r, r.URL.Query().Get("tag"), "/")
}

func (s *Server) tagPage(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	s.listing(w, r, tag, "/tags/"+url.PathEscape(tag))
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request, tag, basePath string) {
	u := userFrom(r.Context())
	page := parsePage(r.URL.Query().Get("page"))

	p, err := s.bookmarks.List(r.Context(), u.ID, tag, page)
	if err != nil {
		slog.Error("listing bookmarks", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	tags, err := s.bookmarks.TagCloud(r.Context(), u.ID)
	if err != nil {
		slog.Error("tag cloud", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	title := "Bookmarks"
	if p.Tag != "" {
		title = "Tag: " + p.Tag
	}

	s.render(w, r, "index", title, &listView{
		Page:     p,
		Tags:     tags,
		Error:    r.URL.Query().Get("error"),
		basePath: basePath,
	})
}

func parsePage(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}

	return n
}

func (s *Server) addBookmark(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u := userFrom(r.Context())
	_, err := s.bookmarks.Add(r.Context(), u.ID, service.NewBookmark{
		URL:         r.PostFormValue("url"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Tags:        r.PostFormValue("tags"),
	})

	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, db.ErrRecordDuplicate):
		http.Redirect(w, r, "/?error=duplicate", http.StatusFound)
	case errors.Is(err, bookmark.ErrInvalid), errors.Is(err, bookmark.ErrURLEmpty):
		http.Redirect(w, r, "/?error=invalid_bookmark", http.StatusFound)
	default:
		slog.Error("adding bookmark", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u := userFrom(r.Context())
	if err := s.bookmarks.Delete(r.Context(), u.ID, id); err != nil && !service.IsNotFound(err) {
		slog.Error("deleting bookmark", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func pathID(r *http.Request) (int64, error) {
	idStr := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", bookmark.ErrInvalidID, idStr)
	}

	return id, nil
}

func (s *Server) admin(w http.ResponseWriter, r *http.Request) {
	s.renderAdmin(w, r, nil)
}

func (s *Server) renderAdmin(w http.ResponseWriter, r *http.Request, newKey *service.NewAPIKey) {
	u := userFrom(r.Context())

	stats, err := s.bookmarks.Statistics(r.Context(), u.ID)
	if err != nil {
		slog.Error("statistics", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	keys, err := s.keys.List(r.Context(), u.ID)
	if err != nil {
		slog.Error("listing api keys", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	q := r.URL.Query()
	s.render(w, r, "admin", "Admin", &adminView{
		Stats:   stats,
		Keys:    keys,
		NewKey:  newKey,
		Success: q.Get("success"),
		Error:   q.Get("error"),
		Message: q.Get("message"),
		Query:   q,
	})
}

func (s *Server) exportNetscape(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	out, err := s.port.Export(r.Context(), u.ID)
	if err != nil {
		slog.Error("export", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+service.ExportFilename(time.Now()))
	_, _ = io.WriteString(w, out)
}

func (s *Server) importNetscape(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	data, err := s.readUpload(w, r)
	if err != nil {
		slog.Error("import: reading upload", "error", err)
		importFailed(w, r, err.Error())

		return
	}

	res := s.port.Import(r.Context(), u.ID, data)
	if res.Imported == 0 && len(res.Errors) > 0 {
		importFailed(w, r, res.Errors[0])
		return
	}

	target := fmt.Sprintf("/admin?success=bookmarks_imported&imported=%d&skipped=%d", res.Imported, res.Skipped)
	http.Redirect(w, r, target, http.StatusFound)
}

func importFailed(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/admin?error=import_failed&message="+url.QueryEscape(msg), http.StatusFound)
}

// readUpload returns the uploaded bookmark file. Reads stop one byte past
// the import size limit so the importer still reports the document as too
// large.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := int64(s.port.MaxSize())
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+uploadOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}

	f, hdr, err := r.FormFile(formFileField)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", formFileField, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("import: closing upload", "error", err)
		}
	}()

	slog.Info("import: received file", "filename", hdr.Filename, "size", hdr.Size)

	var src io.Reader = f
	if limit > 0 {
		src = io.LimitReader(f, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	return data, nil
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u := userFrom(r.Context())
	err := s.auth.ChangePassword(r.Context(), u.ID, r.PostFormValue("current_password"), r.PostFormValue("new_password"))

	switch {
	case err == nil:
		http.Redirect(w, r, "/admin?success=password_changed", http.StatusFound)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Redirect(w, r, "/admin?error=invalid_password", http.StatusFound)
	case errors.Is(err, auth.ErrPasswordEmpty):
		http.Redirect(w, r, "/admin?error=empty_password", http.StatusFound)
	default:
		slog.Error("changing password", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u := userFrom(r.Context())

	k, err := s.keys.Create(r.Context(), u.ID, r.PostFormValue("name"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Redirect(w, r, "/admin?error=invalid_key_name", http.StatusFound)
			return
		}

		slog.Error("creating api key", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	// the raw key is shown once, on this response
	s.renderAdmin(w, r, k)
}

func (s *Server) deleteAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u := userFrom(r.Context())
	if err := s.keys.Delete(r.Context(), u.ID, id); err != nil && !errors.Is(err, db.ErrAPIKeyNotFound) {
		slog.Error("deleting api key", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	http.Redirect(w, r, "/admin", http.StatusFound)
}

func (s *Server) deleteAllBookmarks(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	n, err := s.bookmarks.DeleteAll(r.Context(), u.ID)
	if err != nil {
		slog.Error("deleting all bookmarks", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	http.Redirect(w, r, "/admin?success=bookmarks_deleted&count="+strconv.FormatInt(n, 10), http.StatusFound)
}

func (s *Server) apiDocs(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "api_docs", "API", nil)
}
