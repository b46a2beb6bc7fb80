package api

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
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}}
            }
        },
        "/students": {
            "get": {
                "tags": ["students"],
                "summary": "List students",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}}
            },
            "post": {
                "tags": ["students"],
                "summary": "Add a student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.StudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "409": {"description": "Duplicate roll number", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/students/{roll}": {
            "get": {
                "tags": ["students"],
                "summary": "Find a student by roll number",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "roll", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Invalid roll number", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "put": {
                "tags": ["students"],
                "summary": "Update a student's name and marks",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "roll", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.StudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "delete": {
                "tags": ["students"],
                "summary": "Delete a student",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "roll", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["diagnostics"],
                "summary": "Roll book statistics",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}}
            }
        },
        "/reload": {
            "post": {
                "tags": ["diagnostics"],
                "summary": "Reload records from storage",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "api.StudentRequest": {
            "type": "object",
            "properties": {
                "roll": {"type": "integer"},
                "name": {"type": "string"},
                "marks": {"type": "number"}
            }
        },
        "record.Record": {
            "type": "object",
            "properties": {
                "roll": {"type": "integer"},
                "name": {"type": "string"},
                "marks": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "rollbook REST API",
	Description:      "REST API for the rollbook student record book.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
