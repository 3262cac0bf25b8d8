// Package docs registers the Swagger document served under /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/health": {
            "get": {
                "tags": ["health"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/api/tasks": {
            "get": {
                "tags": ["tasks"],
                "summary": "Get the task store",
                "description": "Return the whole store in the current schema, migrating a legacy file on the fly",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/Store"}
                    }
                }
            },
            "post": {
                "tags": ["tasks"],
                "summary": "Replace the task store",
                "description": "Coerce the posted document and persist it unless it matches the stored one",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "description": "Store document",
                        "required": true,
                        "schema": {"$ref": "#/definitions/Store"}
                    }
                ],
                "responses": {
                    "200": {"description": "Saved or unchanged", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "400": {"description": "Body is not a JSON object", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "500": {"description": "Write failed", "schema": {"$ref": "#/definitions/SaveResponse"}}
                }
            }
        },
        "/api/tasks/today": {
            "get": {
                "tags": ["tasks"],
                "summary": "Get today's tasks",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}}
                }
            },
            "post": {
                "tags": ["tasks"],
                "summary": "Replace today's tasks",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "400": {"description": "Body is not an array of objects", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "500": {"description": "Write failed", "schema": {"$ref": "#/definitions/SaveResponse"}}
                }
            }
        },
        "/api/tasks/tomorrow": {
            "get": {
                "tags": ["tasks"],
                "summary": "Get tomorrow's tasks",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}}
                }
            },
            "post": {
                "tags": ["tasks"],
                "summary": "Replace tomorrow's tasks",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "400": {"description": "Body is not an array of objects", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "500": {"description": "Write failed", "schema": {"$ref": "#/definitions/SaveResponse"}}
                }
            }
        },
        "/api/tasks/counter": {
            "post": {
                "tags": ["tasks"],
                "summary": "Set the task id counter",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "request",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SetCounterRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SaveResponse"}},
                    "400": {"description": "Invalid counter", "schema": {"$ref": "#/definitions/SaveResponse"}}
                }
            }
        }
    },
    "definitions": {
        "HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "time": {"type": "string"},
                "data_file": {"type": "string"}
            }
        },
        "Task": {
            "type": "object",
            "additionalProperties": true,
            "properties": {
                "id": {"type": "integer"},
                "date": {"type": "string", "example": "2024-01-31"}
            }
        },
        "Store": {
            "type": "object",
            "properties": {
                "allTasks": {"type": "array", "items": {"$ref": "#/definitions/Task"}},
                "taskIdCounter": {"type": "integer", "example": 1},
                "currentDate": {"type": "string", "x-nullable": true},
                "taskExpirationDays": {"type": "integer", "example": 7},
                "archivedTasks": {"type": "object", "additionalProperties": true}
            }
        },
        "SaveResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "changed": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "SetCounterRequest": {
            "type": "object",
            "required": ["counter"],
            "properties": {
                "counter": {"type": "integer", "minimum": 1}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:4096",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "TaskStore API",
	Description:      "Task list persistence server",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
