package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Center CMS API",
        "description": "Multi-tenant content API for learning centers",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "in": "header", "name": "x-api-key"},
        "AccessToken": {"type": "apiKey", "in": "header", "name": "x-access-token"}
    },
    "tags": [
        {"name": "Authentication", "description": "Staff login and session introspection"},
        {"name": "Public", "description": "Published content of a center"},
        {"name": "Admin", "description": "Content management within the caller's center"},
        {"name": "Internal", "description": "Root-key lookups across centers"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff user",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Describe the current caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/centers/{centerId}/{kind}": {
            "get": {
                "tags": ["Public"],
                "summary": "List published content",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "centerId", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/kind"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown center", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/centers/{centerId}/{kind}/{id}": {
            "get": {
                "tags": ["Public"],
                "summary": "Get published content",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "centerId", "in": "path", "required": true, "type": "string"},
                    {"$ref": "#/parameters/kind"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/{kind}": {
            "get": {
                "tags": ["Admin"],
                "summary": "List content of the caller's center",
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Create content",
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Title collides with existing content", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/{kind}/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export content of the caller's center",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/admin/{kind}/{id}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get content",
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Admin"],
                "summary": "Update content",
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Title collides with existing content", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin"],
                "summary": "Soft delete content",
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/{kind}/{id}/purge": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Permanently remove soft-deleted content",
                "description": "Administrators only.",
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/assets": {
            "post": {
                "tags": ["Admin"],
                "summary": "Upload an asset",
                "consumes": ["multipart/form-data"],
                "security": [{"ApiKeyAuth": [], "AccessToken": []}],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/internal/{kind}/{id}": {
            "get": {
                "tags": ["Internal"],
                "summary": "Get content regardless of center or status",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/internal/metrics": {
            "get": {
                "tags": ["Internal"],
                "summary": "Metrics snapshot",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "kind": {
            "name": "kind",
            "in": "path",
            "required": true,
            "type": "string",
            "enum": ["posts", "journals", "policies", "presentations", "projects", "research", "galleries", "teams"]
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ContentRequest": {
            "type": "object",
            "properties": {
                "center_id": {"type": "string", "description": "Ignored for staff callers; the account's center is used"},
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "body": {"type": "string"},
                "asset_id": {"type": "string"},
                "asset_url": {"type": "string"}
            },
            "required": ["title"]
        },
        "Content": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "center_id": {"type": "string"},
                "title": {"type": "string"},
                "stripped_title": {"type": "string"},
                "summary": {"type": "string"},
                "body": {"type": "string"},
                "asset_id": {"type": "string"},
                "asset_url": {"type": "string"},
                "status": {"type": "integer"},
                "created_by": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "start": {"type": "integer"},
                "end": {"type": "integer"},
                "limit": {"type": "integer"},
                "pages": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "field": {"type": "string"},
                            "rule": {"type": "string"},
                            "message": {"type": "string"}
                        }
                    }
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
