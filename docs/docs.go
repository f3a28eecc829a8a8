// Package docs registers the workflow API description with swag.
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Open a workflow session",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.SessionResponse"}}
                }
            }
        },
        "/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Current workflow state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workflow.Snapshot"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["session"],
                "summary": "End the session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/session/reset": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Reset the workflow",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workflow.Snapshot"}}
                }
            }
        },
        "/session/agents": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Create the agent pool",
                "parameters": [
                    {"description": "agent count 1-100", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.CreateAgentsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workflow.Snapshot"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/session/questions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Raw CSV body, or multipart form with a \"file\" field. One question per row, no header.",
                "consumes": ["text/csv", "multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Upload a question CSV",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workflow.Snapshot"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/session/scenario": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Deploy a future scenario",
                "parameters": [
                    {"description": "scenario text, at least 5 characters", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ScenarioRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workflow.Snapshot"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        },
        "/session/gates": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Gates for draft input",
                "parameters": [
                    {"type": "integer", "description": "draft agent count", "name": "count", "in": "query"},
                    {"type": "string", "description": "draft scenario text", "name": "scenario", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/workflow.Gates"}}
                }
            }
        },
        "/session/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/zip"],
                "tags": ["workflow"],
                "summary": "Download agent responses",
                "parameters": [
                    {"type": "string", "description": "local (default) or backend", "name": "source", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/model.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "model.SessionResponse": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "model.CreateAgentsRequest": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"}
            }
        },
        "model.ScenarioRequest": {
            "type": "object",
            "properties": {
                "scenario": {"type": "string"}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "workflow.Gates": {
            "type": "object",
            "properties": {
                "dashboard": {"type": "boolean"},
                "upload": {"type": "boolean"},
                "presentAnswers": {"type": "boolean"},
                "submitScenario": {"type": "boolean"},
                "futureAnswers": {"type": "boolean"},
                "download": {"type": "boolean"},
                "createAgents": {"type": "boolean"},
                "reset": {"type": "boolean"}
            }
        },
        "workflow.Snapshot": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "epoch": {"type": "integer"},
                "gates": {"$ref": "#/definitions/workflow.Gates"},
                "agents": {"type": "array", "items": {"type": "object"}},
                "baseline": {"type": "object"},
                "future": {"type": "object"},
                "scenario": {"type": "object"},
                "inFlight": {"type": "array", "items": {"type": "string"}},
                "toast": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Future Customer Workflow API",
	Description:      "Agent simulation workflow: agents, questions, scenarios and exports",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
