package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/service"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
)

type reportServiceMock struct {
	submitted  *dto.SubmitReportRequest
	image      service.Upload
	submitErr  error
	mine       []models.Report
	query      dto.ListReportsQuery
	page       *models.ReportPage
	deletedID  string
	deleteErr  error
	updateReq  dto.UpdateStatusRequest
	updateResp *dto.UpdateStatusResponse
	updateErr  error
	lastMeta   service.RequestMeta
}

func (m *reportServiceMock) Submit(ctx context.Context, actor *models.Principal, req dto.SubmitReportRequest, image service.Upload) (*dto.SubmitReportResponse, error) {
	m.submitted = &req
	m.image = image
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &dto.SubmitReportResponse{Message: "Report submitted successfully", ImageURL: "/uploads/reports/x.jpg", ID: "r-1"}, nil
}

func (m *reportServiceMock) ListMine(ctx context.Context, actor *models.Principal) ([]models.Report, error) {
	return m.mine, nil
}

func (m *reportServiceMock) List(ctx context.Context, query dto.ListReportsQuery) (*models.ReportPage, error) {
	m.query = query
	return m.page, nil
}

func (m *reportServiceMock) Delete(ctx context.Context, actor *models.Principal, id string, meta service.RequestMeta) error {
	m.deletedID = id
	m.lastMeta = meta
	return m.deleteErr
}

func (m *reportServiceMock) UpdateStatus(ctx context.Context, actor *models.Principal, id string, req dto.UpdateStatusRequest, meta service.RequestMeta) (*dto.UpdateStatusResponse, error) {
	m.updateReq = req
	m.lastMeta = meta
	return m.updateResp, m.updateErr
}

func TestReportHandlerSubmitMultipart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{}
	handler := NewReportHandler(mockSvc, 1<<20)

	c, w := newMultipartContext(t, http.MethodPost, "/report-issue",
		map[string]string{"location": "Sector 7", "description": "", "tags": "Road"},
		formFile{field: "image", filename: "pothole.png", contentType: "image/png", data: []byte("png-bytes")},
	)
	withPrincipal(c, citizenPrincipal())
	handler.Submit(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.submitted)
	assert.Equal(t, "Sector 7", mockSvc.submitted.Location)
	assert.Equal(t, "Road", mockSvc.submitted.Tag)
	assert.Equal(t, "image/png", mockSvc.image.ContentType)
	assert.Equal(t, []byte("png-bytes"), mockSvc.image.Data)
}

func TestReportHandlerSubmitWithoutImageDefersToService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{submitErr: appErrors.Clone(appErrors.ErrValidation, "Image is required")}
	handler := NewReportHandler(mockSvc, 1<<20)

	c, w := newMultipartContext(t, http.MethodPost, "/report-issue",
		map[string]string{"location": "Sector 7", "tags": "Road"})
	withPrincipal(c, citizenPrincipal())
	handler.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.image.Data)
	assert.JSONEq(t, `{"detail":"Image is required","code":"VALIDATION_ERROR"}`, w.Body.String())
}

func TestReportHandlerSubmitRequiresPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{}, 0)

	c, w := newMultipartContext(t, http.MethodPost, "/report-issue", map[string]string{"tags": "Road"})
	handler.Submit(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerMyReportsNeverNull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{}, 0)

	c, w := newGinContext(http.MethodGet, "/my-reports", nil)
	withPrincipal(c, citizenPrincipal())
	handler.MyReports(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reports":[]}`, w.Body.String())
}

func TestReportHandlerListBindsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{page: &models.ReportPage{Reports: []models.Report{}, Page: 2, Limit: 5, Total: 7, HasMore: false}}
	handler := NewReportHandler(mockSvc, 0)

	c, w := newGinContext(http.MethodGet, "/all-reports?page=2&limit=5&status=In%20Progress&tag=road&search=lamp&date=2024-05-01", nil)
	withPrincipal(c, adminPrincipal(models.Department(models.TagRoad)))
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.ListReportsQuery{Page: 2, Limit: 5, Search: "lamp", Status: "In Progress", Tag: "road", Date: "2024-05-01"}, mockSvc.query)

	var body models.ReportPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 7, body.Total)
	assert.False(t, body.HasMore)
}

func TestReportHandlerListRejectsNonNumericPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{}, 0)

	c, w := newGinContext(http.MethodGet, "/all-reports?page=two", nil)
	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{}
	handler := NewReportHandler(mockSvc, 0)

	c, w := newGinContext(http.MethodDelete, "/delete-report/r-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "r-1"}}
	c.Request.Header.Set("User-Agent", "svtest")
	withPrincipal(c, citizenPrincipal())
	handler.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "r-1", mockSvc.deletedID)
	assert.Equal(t, "svtest", mockSvc.lastMeta.UserAgent)
}

func TestReportHandlerDeleteConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{deleteErr: appErrors.Clone(appErrors.ErrConflict, "Only submitted reports can be deleted")}, 0)

	c, w := newGinContext(http.MethodDelete, "/delete-report/r-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "r-1"}}
	withPrincipal(c, citizenPrincipal())
	handler.Delete(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestReportHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{updateResp: &dto.UpdateStatusResponse{Message: "Status updated successfully", Status: models.StatusInProgress}}
	handler := NewReportHandler(mockSvc, 0)

	payload, _ := json.Marshal(dto.UpdateStatusRequest{NewStatus: "in-progress"})
	c, w := newGinContext(http.MethodPut, "/update-report-status/r-1", payload)
	c.Params = gin.Params{{Key: "id", Value: "r-1"}}
	withPrincipal(c, adminPrincipal(models.Department(models.TagRoad)))
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "in-progress", mockSvc.updateReq.NewStatus)
	assert.JSONEq(t, `{"message":"Status updated successfully","status":"in-progress"}`, w.Body.String())
}

func TestReportHandlerUpdateStatusDepartmentMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	detail := "Your department (Water) cannot update Road reports"
	handler := NewReportHandler(&reportServiceMock{updateErr: appErrors.Clone(appErrors.ErrForbidden, detail)}, 0)

	payload, _ := json.Marshal(dto.UpdateStatusRequest{NewStatus: "resolved"})
	c, w := newGinContext(http.MethodPut, "/update-report-status/r-1", payload)
	c.Params = gin.Params{{Key: "id", Value: "r-1"}}
	withPrincipal(c, adminPrincipal(models.Department(models.TagWater)))
	handler.UpdateStatus(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, detail, body["detail"])
}
