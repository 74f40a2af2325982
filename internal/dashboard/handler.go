package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"user-dashboard/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

// Templates parses the dashboard page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"seconds": func(d time.Duration) float64 {
			return d.Seconds()
		},
	}).ParseFS(templateFS, "templates/*.html"))
}

// API is what the dashboard needs from the /users endpoints.
type API interface {
	List(ctx context.Context) ([]User, error)
	Submit(ctx context.Context, sub Submission) error
	Delete(ctx context.Context, id int64) error
}

// Handler serves the dashboard page and its form posts.
type Handler struct {
	api API
	log *zap.Logger
}

// NewHandler creates a dashboard handler backed by api.
func NewHandler(api API, log *zap.Logger) *Handler {
	return &Handler{
		api: api,
		log: log,
	}
}

// Register mounts the dashboard routes. The engine must carry Templates().
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.POST("/dashboard/submit", h.Submit)
	r.POST("/dashboard/users/:id/delete", h.Delete)
}

// Index handles GET /. ?edit=<id> opens the form on that user and
// ?success=<code> shows the banner left by a previous write.
func (h *Handler) Index(c *gin.Context) {
	st := NewState()
	st.Mount()
	h.load(c, st)

	if raw := c.Query("edit"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			for _, u := range st.Users {
				if u.ID == id {
					st.Edit(u)
					break
				}
			}
		}
	}
	st.Notify(c.Query("success"))

	h.render(c, st)
}

// Submit handles POST /dashboard/submit. A non-empty id field updates that
// user, otherwise a new user is created.
func (h *Handler) Submit(c *gin.Context) {
	st := NewState()
	st.Mount()
	h.load(c, st)

	name, email := c.PostForm("name"), c.PostForm("email")
	if raw := c.PostForm("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			st.Form = Form{Name: name, Email: email}
			st.SubmitFailed(fmt.Errorf("invalid user id %q", raw))
			h.render(c, st)
			return
		}
		st.Edit(User{ID: id, Name: name, Email: email})
	} else {
		st.Form = Form{Name: name, Email: email}
	}

	sub, ok := st.Submit()
	if !ok {
		h.render(c, st)
		return
	}

	if err := h.api.Submit(c.Request.Context(), sub); err != nil {
		h.logger(c).Warn("dashboard submit failed", zap.Int64("id", sub.ID), zap.Error(err))
		st.SubmitFailed(err)
		h.render(c, st)
		return
	}

	st.SubmitSucceeded()
	h.redirect(c, st)
}

// Delete handles POST /dashboard/users/:id/delete.
func (h *Handler) Delete(c *gin.Context) {
	st := NewState()
	st.Mount()

	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		err = h.api.Delete(c.Request.Context(), id)
	} else {
		err = fmt.Errorf("invalid user id %q", raw)
	}
	if err != nil {
		h.logger(c).Warn("dashboard delete failed", zap.String("id", raw), zap.Error(err))
		h.load(c, st)
		st.DeleteFailed(err)
		h.render(c, st)
		return
	}

	st.DeleteSucceeded()
	h.redirect(c, st)
}

func (h *Handler) load(c *gin.Context, st *State) {
	users, err := h.api.List(c.Request.Context())
	if err != nil {
		h.logger(c).Error("dashboard failed to list users", zap.Error(err))
		st.LoadFailed(err)
		return
	}
	st.Loaded(users)
}

func (h *Handler) render(c *gin.Context, st *State) {
	c.HTML(http.StatusOK, pageTemplate, st)
}

// redirect sends the browser back to the page, which reloads the list.
func (h *Handler) redirect(c *gin.Context, st *State) {
	target := "/"
	if st.Notice != "" {
		target += "?success=" + st.Notice
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (h *Handler) logger(c *gin.Context) *zap.Logger {
	return logger.WithContext(c.Request.Context(), h.log)
}
