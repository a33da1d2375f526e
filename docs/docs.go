// Package docs holds the OpenAPI document served by the swagger build.
// Regenerate with `swag init -g cmd/docvisiond/docs.go -o docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "docvision maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models/available": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List available models",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}}
            }
        },
        "/models/current": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Current active model",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CurrentModelResponse"}}}
            }
        },
        "/models/set/{model_name}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Set the active model",
                "parameters": [{"type": "string", "description": "Model name", "name": "model_name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.StatusMessage"}}
                }
            }
        },
        "/models/download": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Start a model download",
                "parameters": [{"description": "Model to pull", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.DownloadRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.StatusMessage"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/cancel-download": {
            "post": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Cancel the running download",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusMessage"}}}
            }
        },
        "/models/download-status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Download status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DownloadStatusResponse"}}}
            }
        },
        "/models/run/{model_name}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Warm up a model",
                "parameters": [{"type": "string", "description": "Model name", "name": "model_name", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RunModelResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/describe": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["vision"],
                "summary": "Describe objects in an image",
                "parameters": [{"description": "Image and objects", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.DescribeRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DescribeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/analyze": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["vision"],
                "summary": "Cross-reference image objects with a text",
                "parameters": [{"description": "Image and text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.AnalysisRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.AnalysisResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/resumer": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["text"],
                "summary": "Summarise a text",
                "parameters": [{"description": "Text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.SummaryRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SummaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/translate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["text"],
                "summary": "Translate a text",
                "parameters": [{"description": "Text", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.TranslateRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TranslateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HealthResponse"}}}
            }
        },
        "/debug/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ops"],
                "summary": "Recent manager events",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.EventsResponse"}}}
            }
        }
    },
    "definitions": {
        "types.StatusMessage": {"type": "object", "properties": {"status": {"type": "string", "example": "success"}, "message": {"type": "string"}}},
        "types.ModelEntry": {"type": "object", "properties": {"name": {"type": "string", "example": "llava:7b"}, "is_active": {"type": "boolean"}}},
        "types.ModelsResponse": {"type": "object", "properties": {"status": {"type": "string", "example": "success"}, "models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelEntry"}}}},
        "types.CurrentModelResponse": {"type": "object", "properties": {"status": {"type": "string"}, "model": {"type": "string", "example": "llava:7b"}, "message": {"type": "string"}}},
        "types.DownloadRequest": {"type": "object", "properties": {"model_name": {"type": "string", "example": "mistral"}}},
        "types.DownloadStatusResponse": {"type": "object", "properties": {"status": {"type": "string", "example": "downloading"}, "progress": {"type": "integer", "example": 42}, "message": {"type": "string"}, "model_name": {"type": "string", "x-nullable": true}}},
        "types.RunModelResponse": {"type": "object", "properties": {"status": {"type": "string"}, "response": {"type": "boolean"}}},
        "types.DescribeRequest": {"type": "object", "properties": {"image_url": {"type": "string"}, "objects": {"type": "array", "items": {"type": "string"}}}},
        "types.DescribeResponse": {"type": "object", "properties": {"status": {"type": "string"}, "message": {"type": "string"}, "description": {"type": "string"}, "model_used": {"type": "string"}}},
        "types.Occurrence": {"type": "object", "properties": {"occurence_text": {"type": "integer"}, "occurence_image": {"type": "integer"}}},
        "types.AnalysisRequest": {"type": "object", "properties": {"image_url": {"type": "string"}, "text": {"type": "string"}}},
        "types.AnalysisResponse": {"type": "object", "properties": {"result": {"type": "object", "additionalProperties": {"$ref": "#/definitions/types.Occurrence"}}}},
        "types.SummaryRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "types.SummaryResponse": {"type": "object", "properties": {"summary": {"type": "string"}}},
        "types.TranslateRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "types.TranslateResponse": {"type": "object", "properties": {"translated_text": {"type": "string"}}},
        "types.HealthResponse": {"type": "object", "properties": {"status": {"type": "string", "example": "healthy"}, "ollama_connection": {"type": "string", "example": "ok"}}},
        "types.EventEntry": {"type": "object", "properties": {"name": {"type": "string"}, "model": {"type": "string"}, "fields": {"type": "object"}}},
        "types.EventsResponse": {"type": "object", "properties": {"events": {"type": "array", "items": {"$ref": "#/definitions/types.EventEntry"}}}},
        "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer", "example": 400}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "docvision API",
	Description:      "Vision model lifecycle management, image description and text analysis.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
