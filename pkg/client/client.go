// Package client is the StreetVoice SDK: a typed HTTP client for the API plus
// the stateful flows (submission, listing, moderation, advice, profile and
// authentication) the citizen and admin front ends are built from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 8 << 20
)

// NoLocationFound is the label used when geocoding yields no result.
const NoLocationFound = "Location not found"

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialProvider
	HTTPClient  *http.Client
	// Jar receives cookies set by the API. Ignored when HTTPClient is set.
	Jar    http.CookieJar
	Logger *zap.Logger
}

// Client talks to the StreetVoice API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", opts.BaseURL)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Jar: opts.Jar}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base.String(),
		http:    httpClient,
		creds:   opts.Credentials,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// File is an in-memory upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Empty reports whether no file was chosen.
func (f *File) Empty() bool {
	return f == nil || len(f.Data) == 0
}

// ReportPage is one page of the admin listing. Total and HasMore are nil
// when the server omits them.
type ReportPage struct {
	Reports []models.Report `json:"reports"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   *int            `json:"total"`
	HasMore *bool           `json:"has_more"`
}

// ListQuery selects a page of the admin listing.
type ListQuery struct {
	Filters Filters
	Page    int
	Limit   int
}

// NewReport is the payload of a report submission.
type NewReport struct {
	Image       *File
	Location    string
	Description string
	Tag         models.Tag
}

// ProfileSubmission is the payload of a profile completion.
type ProfileSubmission struct {
	FullName   string
	Phone      string
	Role       models.Role
	Department string
	Zone       string
	AdminCode  string
	ProfilePic *File
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	auth        bool
}

// do performs one call. Authorized calls resolve the credential before any
// network I/O.
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	var token string
	if req.auth {
		if c.creds == nil {
			return ErrUnauthenticated
		}
		var err error
		if token, err = c.creds.ResolveToken(ctx); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return &Error{Kind: KindRequestFailed, Detail: "invalid request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("api call failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return transportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return transportError(err)
	}
	c.logger.Debug("api call",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindRequestFailed, Status: resp.StatusCode, Detail: "invalid response body", Err: err}
	}
	return nil
}

func jsonRequest(method, path string, payload interface{}, auth bool) (request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return request{}, &Error{Kind: KindRequestFailed, Detail: "invalid request", Err: err}
	}
	return request{method: method, path: path, body: body, contentType: "application/json", auth: auth}, nil
}

type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipart() *multipartBody {
	m := &multipartBody{}
	m.writer = multipart.NewWriter(&m.buf)
	return m
}

// fields writes name/value pairs in order.
func (m *multipartBody) fields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := m.writer.WriteField(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (m *multipartBody) file(name string, f *File) error {
	filename := f.Name
	if filename == "" {
		filename = name
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, filename))
	h.Set("Content-Type", contentType)
	part, err := m.writer.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}

func (m *multipartBody) request(method, path string) (request, error) {
	if err := m.writer.Close(); err != nil {
		return request{}, &Error{Kind: KindRequestFailed, Detail: "invalid request", Err: err}
	}
	return request{method: method, path: path, body: m.buf.Bytes(), contentType: m.writer.FormDataContentType(), auth: true}, nil
}

// Register creates a password account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	req, err := jsonRequest(http.MethodPost, "/register", dto.RegisterRequest{Email: email, Password: password}, false)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

// Login exchanges password credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	req, err := jsonRequest(http.MethodPost, "/login", dto.LoginRequest{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}
	var out dto.TokenResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginGoogle exchanges a Google ID token for an access token.
func (c *Client) LoginGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error) {
	form := url.Values{"token": {idToken}}
	req := request{
		method:      http.MethodPost,
		path:        "/login/google",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
	var out dto.TokenResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the API to drop its session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/logout"}, nil)
}

// SubmitReport uploads a new report.
func (c *Client) SubmitReport(ctx context.Context, r NewReport) (*dto.SubmitReportResponse, error) {
	body := newMultipart()
	if !r.Image.Empty() {
		if err := body.file("image", r.Image); err != nil {
			return nil, &Error{Kind: KindRequestFailed, Detail: "invalid image", Err: err}
		}
	}
	if err := body.fields("location", r.Location, "description", r.Description, "tags", r.Tag.String()); err != nil {
		return nil, &Error{Kind: KindRequestFailed, Detail: "invalid request", Err: err}
	}
	req, err := body.request(http.MethodPost, "/report-issue")
	if err != nil {
		return nil, err
	}
	var out dto.SubmitReportResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReports fetches one page of the admin listing.
func (c *Client) ListReports(ctx context.Context, q ListQuery) (*ReportPage, error) {
	query := q.Filters.values()
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	var out ReportPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/all-reports", query: query, auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus moves a report to status and returns the stored value.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (models.ReportStatus, error) {
	req, err := jsonRequest(http.MethodPut, "/update-report-status/"+url.PathEscape(id), dto.UpdateStatusRequest{NewStatus: status.String()}, true)
	if err != nil {
		return "", err
	}
	var out dto.UpdateStatusResponse
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	if out.Status == "" {
		return status, nil
	}
	return out.Status, nil
}

// Suggest asks the advisor for remediation steps for a report.
func (c *Client) Suggest(ctx context.Context, report models.Report) (string, error) {
	req, err := jsonRequest(http.MethodPost, "/suggestion", dto.SuggestionRequest{
		Tag:         report.Tag.String(),
		Location:    report.Location,
		Description: report.Description,
	}, true)
	if err != nil {
		return "", err
	}
	var out dto.SuggestionResponse
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.Suggestion, nil
}

// MyReports lists the caller's own reports, newest first.
func (c *Client) MyReports(ctx context.Context) ([]models.Report, error) {
	var out dto.MyReportsResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: "/my-reports", auth: true}, &out); err != nil {
		return nil, err
	}
	return out.Reports, nil
}

// DeleteReport withdraws one of the caller's reports.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/delete-report/" + url.PathEscape(id), auth: true}, nil)
}

// CompleteProfile records the caller's profile.
func (c *Client) CompleteProfile(ctx context.Context, p ProfileSubmission) (*dto.CompleteProfileResponse, error) {
	body := newMultipart()
	if err := body.fields(
		"full_name", p.FullName,
		"phone", p.Phone,
		"role", string(p.Role),
		"department", p.Department,
		"location", p.Zone,
		"admin_code", p.AdminCode,
	); err != nil {
		return nil, &Error{Kind: KindRequestFailed, Detail: "invalid request", Err: err}
	}
	if !p.ProfilePic.Empty() {
		if err := body.file("profile_pic", p.ProfilePic); err != nil {
			return nil, &Error{Kind: KindRequestFailed, Detail: "invalid profile picture", Err: err}
		}
	}
	req, err := body.request(http.MethodPut, "/complete-profile")
	if err != nil {
		return nil, err
	}
	var out dto.CompleteProfileResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type geocodeAnswer struct {
	Results []struct {
		Formatted string `json:"formatted"`
	} `json:"results"`
}

// ReverseGeocode resolves coordinates to a display label through the API
// proxy. An empty answer yields NoLocationFound.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	query := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng": {strconv.FormatFloat(lng, 'f', -1, 64)},
	}
	var out geocodeAnswer
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/get-location", query: query}, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 || strings.TrimSpace(out.Results[0].Formatted) == "" {
		return NoLocationFound, nil
	}
	return out.Results[0].Formatted, nil
}

// DashboardStats fetches the admin dashboard summary.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, request{method: http.MethodGet, path: "/dashboard/stats", auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
