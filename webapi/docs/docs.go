// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.LoginInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/common.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/auth.TokenResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/common.ProblemDetails"}}
                }
            }
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Sign out and flush pending writes", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/session": {
            "get": {"tags": ["auth"], "summary": "Session status", "responses": {"200": {"description": "OK"}}}
        },
        "/auth/push-subscription": {
            "put": {"tags": ["auth"], "security": [{"BearerAuth": []}], "summary": "Store the push subscription", "responses": {"202": {"description": "Accepted"}}}
        },
        "/ledger/state": {
            "get": {"tags": ["ledger"], "security": [{"BearerAuth": []}], "summary": "Full session state", "responses": {"200": {"description": "OK"}, "409": {"description": "No session"}}}
        },
        "/ledger/view": {
            "get": {"tags": ["ledger"], "security": [{"BearerAuth": []}], "summary": "Active month view", "responses": {"200": {"description": "OK"}}}
        },
        "/ledger/summary": {
            "get": {"tags": ["ledger"], "security": [{"BearerAuth": []}], "summary": "Active month totals", "responses": {"200": {"description": "OK"}}}
        },
        "/ledger/transactions": {
            "post": {"tags": ["ledger"], "security": [{"BearerAuth": []}], "summary": "Add a transaction", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}}
        },
        "/ledger/months/duplicate": {
            "post": {"tags": ["ledger"], "security": [{"BearerAuth": []}], "summary": "Create the next month from the active one", "responses": {"201": {"description": "Created"}}}
        }
    },
    "definitions": {
        "auth.LoginInput": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string"}}
        },
        "auth.RegisterInput": {
            "type": "object",
            "required": ["email", "name"],
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}}
        },
        "auth.TokenResponse": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "name": {"type": "string"}, "token": {"type": "string"}}
        },
        "common.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "errors": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FinSync API",
	Description:      "Personal finance ledger with remote sync",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
