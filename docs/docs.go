// Package docs holds the generated OpenAPI document served at /swagger.
// Regenerate with: swag init -g main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/submitUser": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/loggingin": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in and receive the session cookie",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/signout": {
            "post": {
                "tags": ["auth"],
                "summary": "Revoke the session and clear the cookie",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["auth"],
                "summary": "Current session identity",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/me/usage": {
            "get": {
                "tags": ["usage"],
                "summary": "Caller's API usage summary",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/api/analyze": {
            "post": {
                "tags": ["analysis"],
                "summary": "Analyze a resume against a job description",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "502": {"description": "Bad Gateway"},
                    "504": {"description": "Gateway Timeout"}
                }
            }
        },
        "/api/suggestions/suggest": {
            "post": {
                "tags": ["analysis"],
                "summary": "Generate resume suggestions",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "502": {"description": "Bad Gateway"},
                    "504": {"description": "Gateway Timeout"}
                }
            }
        },
        "/api/admin/endpoint-stats": {
            "get": {
                "tags": ["admin"],
                "summary": "Aggregated endpoint usage",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/admin/user-stats": {
            "get": {
                "tags": ["admin"],
                "summary": "Per-user usage totals",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/admin/users": {
            "get": {
                "tags": ["admin"],
                "summary": "Paginated user listing",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/api/admin/users/{id}/role": {
            "put": {
                "tags": ["admin"],
                "summary": "Change a user's role",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/admin/users/{id}": {
            "delete": {
                "tags": ["admin"],
                "summary": "Delete a user",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ResuMatch Backend API",
	Description:      "Authentication, usage metering and resume-analysis proxy API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
