package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StreetVoice API",
        "description": "Citizen civic-issue reporting and moderation backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Password and Google sign-in"},
        {"name": "Profile", "description": "One-time profile completion"},
        {"name": "Reports", "description": "Report submission and moderation"},
        {"name": "Suggestions", "description": "AI remediation advice"},
        {"name": "Location", "description": "Reverse geocoding proxy"},
        {"name": "Dashboard", "description": "Moderation statistics"},
        {"name": "Exports", "description": "Asynchronous report exports"},
        {"name": "Health", "description": "Liveness and readiness"}
    ],
    "paths": {
        "/": {
            "get": {"tags": ["Health"], "summary": "Service banner", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MessageResponse"}}}}
        },
        "/health": {
            "get": {"tags": ["Health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"tags": ["Health"], "summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "Degraded"}}}
        },
        "/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register an account",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/MsgResponse"}},
                    "400": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate with email and password",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Credentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/login/google": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange a Google ID token",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [{"name": "token", "in": "formData", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}},
                    "401": {"description": "Invalid token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/logout": {
            "post": {"tags": ["Authentication"], "summary": "Logout", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MsgResponse"}}}}
        },
        "/complete-profile": {
            "put": {
                "tags": ["Profile"],
                "summary": "Complete the caller's profile",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "full_name", "in": "formData", "required": true, "type": "string"},
                    {"name": "phone", "in": "formData", "required": true, "type": "string"},
                    {"name": "role", "in": "formData", "type": "string", "enum": ["User", "Admin"]},
                    {"name": "department", "in": "formData", "type": "string"},
                    {"name": "location", "in": "formData", "type": "string"},
                    {"name": "admin_code", "in": "formData", "type": "string"},
                    {"name": "profile_pic", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CompleteProfileResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Invalid admin code", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Profile already completed", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/report-issue": {
            "post": {
                "tags": ["Reports"],
                "summary": "Submit a report",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "image", "in": "formData", "required": true, "type": "file"},
                    {"name": "location", "in": "formData", "required": true, "type": "string"},
                    {"name": "description", "in": "formData", "type": "string"},
                    {"name": "tags", "in": "formData", "required": true, "type": "string", "enum": ["Garbage", "Road", "Electricity", "Water", "Sanitation"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SubmitReportResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/my-reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List the caller's reports",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "properties": {"reports": {"type": "array", "items": {"$ref": "#/definitions/Report"}}}}}}
            }
        },
        "/delete-report/{id}": {
            "delete": {
                "tags": ["Reports"],
                "summary": "Delete a submitted report",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Not in submitted status", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/all-reports": {
            "get": {
                "tags": ["Reports"],
                "summary": "List reports for moderation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "tag", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ReportPage"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/update-report-status/{id}": {
            "put": {
                "tags": ["Reports"],
                "summary": "Move a report to a new status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"new_status": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MessageResponse"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Department mismatch", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/suggestion": {
            "post": {
                "tags": ["Suggestions"],
                "summary": "Suggest how to resolve a report",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SuggestionRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"suggestion": {"type": "string"}}}},
                    "502": {"description": "Provider failure", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/api/get-location": {
            "get": {
                "tags": ["Location"],
                "summary": "Reverse geocode coordinates",
                "parameters": [
                    {"name": "lat", "in": "query", "required": true, "type": "number"},
                    {"name": "lng", "in": "query", "required": true, "type": "number"}
                ],
                "responses": {
                    "200": {"description": "Provider answer, forwarded unchanged"},
                    "500": {"description": "Failed to fetch location"}
                }
            }
        },
        "/contact": {
            "post": {
                "tags": ["Health"],
                "summary": "Send a contact message",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "message": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/MessageResponse"}}}
            }
        },
        "/dashboard/stats": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Report statistics",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/DashboardStats"}}}
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a report export",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"format": {"type": "string", "enum": ["csv", "pdf"]}, "status": {"type": "string"}, "tag": {"type": "string"}}}}],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ExportJob"}}}
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ExportJob"}}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "403": {"description": "Invalid or expired token"}}
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {"detail": {"type": "string"}, "code": {"type": "string"}}
        },
        "MsgResponse": {"type": "object", "properties": {"msg": {"type": "string"}}},
        "MessageResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "Credentials": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "profile_complete": {"type": "boolean"},
                "role": {"type": "string"}
            }
        },
        "CompleteProfileResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "profile_complete": {"type": "boolean"}, "role": {"type": "string"}}
        },
        "SubmitReportResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "image_url": {"type": "string"}, "id": {"type": "string"}}
        },
        "Report": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "image_url": {"type": "string"},
                "location": {"type": "string"},
                "description": {"type": "string"},
                "tags": {"type": "string"},
                "status": {"type": "string", "enum": ["submitted", "in-progress", "resolved"]},
                "reported_at": {"type": "string", "format": "date-time"},
                "user_id": {"type": "string"}
            }
        },
        "ReportPage": {
            "type": "object",
            "properties": {
                "reports": {"type": "array", "items": {"$ref": "#/definitions/Report"}},
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "has_more": {"type": "boolean"}
            }
        },
        "SuggestionRequest": {
            "type": "object",
            "properties": {"tag": {"type": "string"}, "location": {"type": "string"}, "description": {"type": "string"}}
        },
        "DashboardStats": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "new_today": {"type": "integer"},
                "submitted": {"type": "integer"},
                "in_progress": {"type": "integer"},
                "resolved": {"type": "integer"},
                "by_tag": {"type": "object", "additionalProperties": {"type": "integer"}},
                "by_zone": {"type": "array", "items": {"type": "object", "properties": {"zone": {"type": "string"}, "count": {"type": "integer"}}}}
            }
        },
        "ExportJob": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "format": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"},
                "download_url": {"type": "string"},
                "expires_at": {"type": "string", "format": "date-time"},
                "error": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
