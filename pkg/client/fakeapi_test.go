package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

type fakeUser struct {
	id         string
	role       models.Role
	department models.Department
}

// fakeAPI is an in-memory StreetVoice API for exercising the SDK flows.
type fakeAPI struct {
	mu        sync.Mutex
	users     map[string]fakeUser
	reports   []models.Report
	seq       int
	omitTotal bool
	calls     int64
	server    *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{users: map[string]fakeUser{
		"citizen":     {id: "u-citizen", role: models.RoleUser},
		"admin-road":  {id: "u-road", role: models.RoleAdmin, department: models.Department(models.TagRoad)},
		"admin-water": {id: "u-water", role: models.RoleAdmin, department: models.Department(models.TagWater)},
	}}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client(t *testing.T, token string) *Client {
	t.Helper()
	c, err := New(Options{BaseURL: f.server.URL, Credentials: StaticToken(token), Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func (f *fakeAPI) callCount() int64 {
	return atomic.LoadInt64(&f.calls)
}

// seed stores n reports with the given tag, newest last.
func (f *fakeAPI) seed(n int, tag models.Tag, status models.ReportStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.insert(models.Report{Location: "Main St", Description: "seeded", Tag: tag, Status: status, UserID: "u-citizen"})
	}
}

func (f *fakeAPI) insert(r models.Report) models.Report {
	f.seq++
	r.ID = fmt.Sprintf("r-%03d", f.seq)
	r.ReportedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	f.reports = append(f.reports, r)
	return r
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/api/get-location":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"results": []map[string]string{{"formatted": "Jl. Sudirman, Jakarta"}},
		})
		return
	case r.Method == http.MethodPost && path == "/login":
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "citizen", "token_type": "bearer", "profile_complete": true, "role": "User"})
		return
	}

	user, ok := f.users[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	switch {
	case r.Method == http.MethodPost && path == "/report-issue":
		f.submit(w, r, user)
	case r.Method == http.MethodGet && path == "/all-reports":
		f.list(w, r, user)
	case r.Method == http.MethodPut && strings.HasPrefix(path, "/update-report-status/"):
		f.updateStatus(w, r, user, strings.TrimPrefix(path, "/update-report-status/"))
	case r.Method == http.MethodGet && path == "/my-reports":
		f.mine(w, user)
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/delete-report/"):
		f.remove(w, user, strings.TrimPrefix(path, "/delete-report/"))
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (f *fakeAPI) submit(w http.ResponseWriter, r *http.Request, user fakeUser) {
	if user.role != models.RoleUser {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	if _, _, err := r.FormFile("image"); err != nil {
		writeDetail(w, http.StatusBadRequest, "Image is required")
		return
	}
	tag, err := models.ParseTag(r.FormValue("tags"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid tag")
		return
	}
	stored := f.insert(models.Report{
		Location:    r.FormValue("location"),
		Description: r.FormValue("description"),
		Tag:         tag,
		Status:      models.StatusSubmitted,
		UserID:      user.id,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Report submitted", "image_url": "/uploads/x.jpg", "id": stored.ID})
}

func (f *fakeAPI) newestFirst() []models.Report {
	out := append([]models.Report(nil), f.reports...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReportedAt.After(out[j].ReportedAt) })
	return out
}

func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request, user fakeUser) {
	if user.role != models.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}

	var matched []models.Report
	for _, rep := range f.newestFirst() {
		if s := q.Get("status"); s != "" {
			status, err := models.ParseReportStatus(s)
			if err != nil {
				writeDetail(w, http.StatusBadRequest, "Invalid status")
				return
			}
			if rep.Status != status {
				continue
			}
		}
		if t := q.Get("tag"); t != "" {
			tag, err := models.ParseTag(t)
			if err != nil {
				writeDetail(w, http.StatusBadRequest, "Invalid tag")
				return
			}
			if rep.Tag != tag {
				continue
			}
		}
		matched = append(matched, rep)
	}

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	body := map[string]interface{}{"reports": matched[start:end], "page": page, "limit": limit}
	if !f.omitTotal {
		body["total"] = len(matched)
		body["has_more"] = end < len(matched)
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *fakeAPI) updateStatus(w http.ResponseWriter, r *http.Request, user fakeUser, id string) {
	if user.role != models.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	var payload struct {
		NewStatus string `json:"new_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	status, err := models.ParseReportStatus(payload.NewStatus)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}
	for i := range f.reports {
		if f.reports[i].ID != id {
			continue
		}
		if !user.department.Covers(f.reports[i].Tag) {
			writeDetail(w, http.StatusForbidden, fmt.Sprintf("Your department (%s) cannot update %s reports", user.department, f.reports[i].Tag))
			return
		}
		f.reports[i].Status = status
		writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated", "status": string(status)})
		return
	}
	writeDetail(w, http.StatusNotFound, "Report not found")
}

func (f *fakeAPI) mine(w http.ResponseWriter, user fakeUser) {
	out := []models.Report{}
	for _, rep := range f.newestFirst() {
		if rep.UserID == user.id {
			out = append(out, rep)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": out})
}

func (f *fakeAPI) remove(w http.ResponseWriter, user fakeUser, id string) {
	for i, rep := range f.reports {
		if rep.ID != id {
			continue
		}
		if rep.UserID != user.id {
			writeDetail(w, http.StatusForbidden, "Not authorized")
			return
		}
		f.reports = append(f.reports[:i], f.reports[i+1:]...)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Report deleted successfully"})
		return
	}
	writeDetail(w, http.StatusNotFound, "Report not found")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail, "code": "ERR"})
}

// pngBytes is a PNG signature, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngFile() *File {
	return &File{Name: "pothole.png", ContentType: "image/png", Data: pngBytes}
}
