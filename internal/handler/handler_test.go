package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/middleware"
	"github.com/noah-isme/streetvoice-api/internal/models"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func newMultipartContext(t *testing.T, method, path string, fields map[string]string, files ...formFile) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	return c, w
}

func withPrincipal(c *gin.Context, p *models.Principal) {
	c.Set(middleware.ContextUserKey, p)
}

func citizenPrincipal() *models.Principal {
	return &models.Principal{UserID: "user-1", Email: "a@b.co", Role: models.RoleUser, ProfileComplete: true}
}

func adminPrincipal(dept models.Department) *models.Principal {
	return &models.Principal{UserID: "admin-1", Email: "admin@b.co", Role: models.RoleAdmin, Department: &dept, ProfileComplete: true}
}

type pingStub struct{ err error }

func (p pingStub) PingContext(context.Context) error { return p.err }
