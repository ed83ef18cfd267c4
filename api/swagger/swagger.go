package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Camp Schedule API",
        "description": "Daily camp schedule merging, time grids and conflict validation",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Draft versions, published days and slot lookups"},
        {"name": "Observability", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Observability"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Observability"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Still hydrating"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Observability"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Prometheus exposition"}
                }
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Service metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/camps/{campId}/days/{date}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Get the published day schedule",
                "parameters": [
                    {"$ref": "#/parameters/campId"},
                    {"$ref": "#/parameters/date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Day not published", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/camps/{campId}/days/{date}/versions": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Save a draft schedule version",
                "consumes": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/campId"},
                    {"$ref": "#/parameters/date"},
                    {
                        "in": "body",
                        "name": "payload",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateVersionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/camps/{campId}/days/{date}/reconcile": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Merge drafts and publish the day",
                "consumes": ["application/json"],
                "parameters": [
                    {"$ref": "#/parameters/campId"},
                    {"$ref": "#/parameters/date"},
                    {
                        "in": "body",
                        "name": "payload",
                        "required": false,
                        "schema": {"$ref": "#/definitions/ReconcileRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Merge failed, previous day kept", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/camps/{campId}/days/{date}/reconcile/schedule": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Trigger a debounced reconcile",
                "parameters": [
                    {"$ref": "#/parameters/campId"},
                    {"$ref": "#/parameters/date"}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/camps/{campId}/days/{date}/validation": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Validate the published day",
                "parameters": [
                    {"$ref": "#/parameters/campId"},
                    {"$ref": "#/parameters/date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/camps/{campId}/days/{date}/slots": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Resolve slots and the owning entry for a bunk and time range",
                "parameters": [
                    {"$ref": "#/parameters/campId"},
                    {"$ref": "#/parameters/date"},
                    {"in": "query", "name": "bunk", "type": "string", "required": true},
                    {"in": "query", "name": "start", "type": "string", "required": true, "description": "Clock time or minutes from midnight"},
                    {"in": "query", "name": "end", "type": "string", "required": true, "description": "Clock time or minutes from midnight"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "campId": {"in": "path", "name": "campId", "type": "string", "required": true},
        "date": {"in": "path", "name": "date", "type": "string", "format": "date", "required": true}
    },
    "definitions": {
        "CreateVersionRequest": {
            "type": "object",
            "required": ["payload"],
            "properties": {
                "payload": {"type": "object"}
            }
        },
        "ReconcileRequest": {
            "type": "object",
            "properties": {
                "incrementMinutes": {"type": "integer", "minimum": 5, "maximum": 120},
                "skipValidation": {"type": "boolean"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
