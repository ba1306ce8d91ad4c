package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-console/internal/client"
	"github.com/noah-isme/timetable-console/internal/dto"
)

const (
	flashCookie = "timetable_flash"
	flashMaxAge = 60
)

// webSurface is the dialog surface of one browser request. Alerts and
// session notices are collected for the next page; confirmation is
// answered by the submitted form.
type webSurface struct {
	confirmed bool
	notices   []dto.Notice
	redirect  string
}

func (w *webSurface) Alert(message string) {
	w.notices = append(w.notices, dto.Notice{Level: dto.NoticeWarning, Text: message})
}

func (w *webSurface) Confirm(string) bool {
	return w.confirmed
}

func (w *webSurface) Notify(message string) {
	w.notices = append(w.notices, dto.Notice{Level: dto.NoticeWarning, Text: message})
}

func (w *webSurface) Redirect(path string) {
	w.redirect = path
}

func (w *webSurface) texts() []string {
	out := make([]string, 0, len(w.notices))
	for _, n := range w.notices {
		out = append(out, n.Text)
	}
	return out
}

// bind attaches the surface to the request context so upstream session
// failures reach this request only.
func (w *webSurface) bind(c *gin.Context) context.Context {
	return client.ContextWithSurfaces(c.Request.Context(), w, w)
}

type cookieJar struct {
	secure bool
}

func (j cookieJar) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", j.secure, true)
}

func (j cookieJar) clear(c *gin.Context, name string) {
	j.set(c, name, "", -1)
}

// flash stores notices for the page rendered after the next redirect.
func (j cookieJar) flash(c *gin.Context, notices ...dto.Notice) {
	if len(notices) == 0 {
		return
	}
	data, err := json.Marshal(notices)
	if err != nil {
		return
	}
	j.set(c, flashCookie, base64.RawURLEncoding.EncodeToString(data), flashMaxAge)
}

// takeFlash reads and clears the pending notices.
func (j cookieJar) takeFlash(c *gin.Context) []dto.Notice {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	j.clear(c, flashCookie)
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var notices []dto.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		return nil
	}
	return notices
}

func warning(text string) dto.Notice {
	return dto.Notice{Level: dto.NoticeWarning, Text: text}
}

func success(text string) dto.Notice {
	return dto.Notice{Level: dto.NoticeSuccess, Text: text}
}
