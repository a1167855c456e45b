// Package docs registers the swagger document served at /swagger/*any.
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
        "/api/v1/create-order": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a gateway order",
                "parameters": [
                    {"type": "string", "description": "Replay guard", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Order", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pkg.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/api/v1/verify-payment": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Verify a payment signature",
                "parameters": [
                    {"description": "Gateway callback", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.VerifyPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.VerifyPaymentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/views.VerifyPaymentResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/views.VerifyPaymentResponse"}}
                }
            }
        },
        "/api/v1/orders/{orderId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Get an order",
                "parameters": [
                    {"type": "string", "description": "Gateway order id", "name": "orderId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/views.OrderResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/api/v1/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.CredentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pkg.APIResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/api/v1/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.CredentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pkg.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/api/v1/update-profile": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Update password or profile picture",
                "parameters": [
                    {"description": "Profile", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.UpdateProfileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pkg.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/api/v1/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["uploads"],
                "summary": "Upload a profile picture",
                "parameters": [
                    {"type": "file", "description": "Image", "name": "profilePic", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/api/v1/feedback": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["feedback"],
                "summary": "Submit feedback",
                "parameters": [
                    {"description": "Feedback", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.FeedbackRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pkg.APIResponse"}}
                }
            }
        },
        "/api/v1/chat": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chat"],
                "summary": "Ask the travel assistant",
                "parameters": [
                    {"description": "Conversation", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/views.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pkg.APIResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/pkg.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["base"],
                "summary": "Liveness and dependency health",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "pkg.APIResponse": {
            "type": "object",
            "properties": {
                "traceId": {"type": "string"},
                "data": {}
            }
        },
        "pkg.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "views.ContactRequest": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "views.CreateOrderRequest": {
            "type": "object",
            "required": ["amount"],
            "properties": {
                "amount": {"type": "number", "example": 2500.5},
                "currency": {"type": "string", "example": "INR"},
                "purpose": {"type": "string", "enum": ["travel", "donation"]},
                "packageName": {"type": "string"},
                "traveler": {"$ref": "#/definitions/views.ContactRequest"},
                "donor": {"$ref": "#/definitions/views.ContactRequest"}
            }
        },
        "views.VerifyPaymentRequest": {
            "type": "object",
            "description": "orderId, paymentId and signature are required; the razorpay_* names are accepted in their place.",
            "properties": {
                "orderId": {"type": "string"},
                "paymentId": {"type": "string"},
                "signature": {"type": "string"},
                "razorpay_order_id": {"type": "string"},
                "razorpay_payment_id": {"type": "string"},
                "razorpay_signature": {"type": "string"}
            }
        },
        "views.VerifyPaymentResponse": {
            "type": "object",
            "properties": {
                "traceId": {"type": "string"},
                "status": {"type": "string"},
                "orderId": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "views.OrderResponse": {
            "type": "object",
            "properties": {
                "orderId": {"type": "string"},
                "purpose": {"type": "string"},
                "packageName": {"type": "string"},
                "amount": {"type": "integer"},
                "currency": {"type": "string"},
                "paymentStatus": {"type": "string"},
                "createdAt": {"type": "string"},
                "paidAt": {"type": "string"}
            }
        },
        "views.CredentialsRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "views.UpdateProfileRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "profilePic": {"type": "string"}
            }
        },
        "views.FeedbackRequest": {
            "type": "object",
            "required": ["name", "email", "message"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "views.ChatMessage": {
            "type": "object",
            "required": ["role", "content"],
            "properties": {
                "role": {"type": "string", "enum": ["system", "user", "assistant"]},
                "content": {"type": "string"}
            }
        },
        "views.ChatRequest": {
            "type": "object",
            "required": ["messages"],
            "properties": {
                "messages": {"type": "array", "items": {"$ref": "#/definitions/views.ChatMessage"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Trip Fund Payment API",
	Description:      "Signup, uploads, feedback, chat and Razorpay order creation / payment verification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
