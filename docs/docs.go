// Package docs provides Swagger documentation for the Superpool API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Superpool API",
        "description": "Insurance quote aggregation and rating API.\n\nA single quote request fans out across the internal product catalog and any connected external insurers, rates each product tier, and returns a merged set of priced quotes.",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "1.0.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "paths": {
        "/quotes": {
            "post": {
                "tags": ["Quotes"],
                "summary": "Request quotes",
                "description": "Aggregates and rates quotes for a category, optionally filtered by product name",
                "operationId": "requestQuotes",
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/QuoteRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Merged quote set",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "quotes": {"type": "array", "items": {"$ref": "#/definitions/Quote"}}
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {"$ref": "#/definitions/ProblemDetails"}
                    }
                }
            }
        },
        "/quotes/{quote_code}": {
            "get": {
                "tags": ["Quotes"],
                "summary": "Get a quote by code",
                "operationId": "getQuote",
                "parameters": [
                    {
                        "name": "quote_code",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Quote code (e.g., SPQ-1A2B3C4D5E6F)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Quote",
                        "schema": {"$ref": "#/definitions/Quote"}
                    },
                    "404": {
                        "description": "Quote not found",
                        "schema": {"$ref": "#/definitions/ProblemDetails"}
                    }
                }
            }
        },
        "/quotes/{quote_code}/accept": {
            "post": {
                "tags": ["Quotes"],
                "summary": "Accept a pending quote",
                "operationId": "acceptQuote",
                "parameters": [
                    {"name": "quote_code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Accepted quote", "schema": {"$ref": "#/definitions/Quote"}},
                    "404": {"description": "Quote not found", "schema": {"$ref": "#/definitions/ProblemDetails"}},
                    "409": {"description": "Quote is not pending", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/quotes/{quote_code}/decline": {
            "post": {
                "tags": ["Quotes"],
                "summary": "Decline a pending quote",
                "operationId": "declineQuote",
                "parameters": [
                    {"name": "quote_code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Declined quote", "schema": {"$ref": "#/definitions/Quote"}},
                    "404": {"description": "Quote not found", "schema": {"$ref": "#/definitions/ProblemDetails"}},
                    "409": {"description": "Quote is not pending", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/quotes/{quote_code}/purchase-id": {
            "post": {
                "tags": ["Quotes"],
                "summary": "Get a purchase id for payment handoff",
                "description": "Returns the current purchase id if still valid, otherwise mints a fresh one. Purchase ids lapse 45 minutes after issuance.",
                "operationId": "refreshPurchaseID",
                "parameters": [
                    {"name": "quote_code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {
                        "description": "Purchase id",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "purchase_id": {"type": "string", "example": "PUR-7f9c2ba4-e88f-11eb-9a03-0242ac130003"}
                            }
                        }
                    },
                    "404": {"description": "Quote not found", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/products": {
            "get": {
                "tags": ["Products"],
                "summary": "List all products",
                "operationId": "listProducts",
                "responses": {
                    "200": {
                        "description": "Products",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "products": {"type": "array", "items": {"$ref": "#/definitions/Product"}}
                            }
                        }
                    }
                }
            }
        },
        "/products/{product_id}": {
            "get": {
                "tags": ["Products"],
                "summary": "Get a product by id",
                "operationId": "getProduct",
                "parameters": [
                    {"name": "product_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Product", "schema": {"$ref": "#/definitions/Product"}},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/products/{product_id}/trash": {
            "post": {
                "tags": ["Products"],
                "summary": "Soft-delete a product",
                "operationId": "trashProduct",
                "parameters": [
                    {"name": "product_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Product trashed"},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/products/{product_id}/restore": {
            "post": {
                "tags": ["Products"],
                "summary": "Restore a trashed product",
                "operationId": "restoreProduct",
                "parameters": [
                    {"name": "product_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Product restored"},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "QuoteRequest": {
            "type": "object",
            "required": ["category"],
            "properties": {
                "category": {"type": "string", "example": "health"},
                "product_name": {"type": "string", "example": "Family Shield"},
                "coverage_preferences": {"type": "array", "items": {"type": "string"}},
                "applicant": {"$ref": "#/definitions/Applicant"}
            }
        },
        "Applicant": {
            "type": "object",
            "properties": {
                "age": {"type": "integer", "example": 42},
                "preexisting_conditions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "type": {"type": "string", "example": "Diabetes"},
                            "severity": {"type": "string", "example": "Fair"}
                        }
                    }
                },
                "home_age_years": {"type": "integer", "example": 12},
                "home_value": {"type": "string", "example": "2500000.00"},
                "destination": {"type": "string", "example": "France"}
            }
        },
        "Quote": {
            "type": "object",
            "properties": {
                "quote_code": {"type": "string", "example": "SPQ-1A2B3C4D5E6F"},
                "origin": {"type": "string", "enum": ["internal", "external"]},
                "provider": {"type": "string", "example": "Heirs Assurance"},
                "category": {"type": "string", "example": "health"},
                "product_id": {"type": "string"},
                "product_name": {"type": "string"},
                "base_price": {"type": "string", "example": "3500.00"},
                "premium": {"$ref": "#/definitions/Price"},
                "additional_metadata": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "string", "enum": ["pending", "accepted", "declined", "expired", "cancelled"]},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "expires_at": {"type": "string", "format": "date-time"},
                "purchase_id": {"type": "string"}
            }
        },
        "Price": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "3950.00"},
                "currency": {"type": "string", "example": "NGN"},
                "pricing_model": {"type": "string", "example": "fixed"},
                "frequency": {"type": "string", "example": "annual"},
                "description": {"type": "string"}
            }
        },
        "Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "provider": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "base_premium": {"type": "string", "example": "1800.00"},
                "tiers": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {"type": "string", "example": "Gold"},
                            "base_premium": {"type": "string", "example": "3500.00"},
                            "coverages": {"type": "array", "items": {"type": "object"}}
                        }
                    }
                },
                "trashed": {"type": "boolean"}
            }
        },
        "ProblemDetails": {
            "type": "object",
            "description": "RFC 7807 Problem Details",
            "properties": {
                "type": {"type": "string", "example": "about:blank"},
                "title": {"type": "string", "example": "Not Found"},
                "status": {"type": "integer", "example": 404},
                "detail": {"type": "string", "example": "Resource not found"}
            }
        }
    },
    "tags": [
        {"name": "Quotes", "description": "Quote aggregation and lifecycle"},
        {"name": "Products", "description": "Internal product catalog"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Superpool API",
	Description:      "Insurance quote aggregation and rating API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
