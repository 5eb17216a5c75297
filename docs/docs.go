// Package docs provides the Swagger specification for the API.
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
        "/auth/callback": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Bootstrap the user and their personal space after Auth0 login",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current user with personal and active space",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/spaces": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "List the personal space and joined shared spaces",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Create a shared space",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/spaces/active": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Get the active space",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Switch the active space",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/spaces/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Get a space",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Rename a space",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Delete a shared space (owner only, no-op on personal)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No content"}, "403": {"description": "Forbidden"}}
            }
        },
        "/spaces/{id}/icon": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Get the space icon URL",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["spaces"],
                "summary": "Upload a space icon",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/spaces/{id}/members": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "List active members",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/spaces/{id}/members/{userId}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Remove a member (owner only)",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {"204": {"description": "No content"}, "403": {"description": "Forbidden"}}
            }
        },
        "/spaces/{id}/members/leave": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Leave the space, with ownership succession",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No content"}}
            }
        },
        "/spaces/{id}/members/transfer": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["members"],
                "summary": "Transfer ownership to another active member",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No content"}, "403": {"description": "Forbidden"}}
            }
        },
        "/spaces/{id}/invite": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "Get the active invite code",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "No active invite"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "Regenerate the invite code (owner only)",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}
            }
        },
        "/invites/redeem": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["invites"],
                "summary": "Redeem an invite code",
                "responses": {
                    "201": {"description": "Joined"},
                    "200": {"description": "Already a member"},
                    "404": {"description": "Code not recognized"},
                    "409": {"description": "No uses remaining"},
                    "410": {"description": "Code expired"}
                }
            }
        },
        "/spaces/{id}/activities": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["activities"],
                "summary": "List recent activity, newest first",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["activities"],
                "summary": "Record a content-layer activity event",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}}
            }
        },
        "/spaces/{id}/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Get the notification preference for a space",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["notifications"],
                "summary": "Set the notification preference for a space",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Larder Spaces API",
	Description:      "Space collaboration API: shared spaces, invites, memberships, activity log.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
