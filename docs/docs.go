// Package docs holds the Swagger document of the HTTP API.
// Regenerate it from the handler annotations with:
//
//	swag init -g cmd/server/main.go -o docs --parseDependency --parseInternal
package docs

import "github.com/swaggo/swag/v2"

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
        "/health": {
            "get": {
                "description": "Reports service health including database connectivity",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "operationId": "health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.HealthResponse"}}}
                            ]
                        }
                    },
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/inventory/receipts": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["stock"],
                "summary": "Receive stock at a location",
                "operationId": "receiveStock",
                "parameters": [
                    {"description": "Receipt", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transfer.ReceiveStockRequest"}}
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/transfer.ReceiptResponse"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/inventory/stock": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["stock"],
                "summary": "Query on-hand quantities",
                "operationId": "listStock",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Location", "name": "location_id", "in": "query"},
                    {"type": "string", "format": "uuid", "description": "Product", "name": "product_id", "in": "query"},
                    {"type": "string", "format": "uuid", "description": "Variation", "name": "variation_id", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/transfer.StockResponse"}}}}
                            ]
                        }
                    }
                }
            }
        },
        "/inventory/transfers": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "List stock transfers",
                "operationId": "listStockTransfers",
                "parameters": [
                    {"type": "string", "description": "pending, in_transit or completed", "name": "status", "in": "query"},
                    {"type": "string", "format": "uuid", "description": "Origin or destination location", "name": "location_id", "in": "query"},
                    {"type": "string", "description": "Reference number search", "name": "search", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/handler.TransferListItemView"}}}}
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Create a stock transfer",
                "operationId": "createStockTransfer",
                "parameters": [
                    {"type": "string", "description": "Replay guard key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Transfer", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transfer.TransferRequest"}}
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.TransferView"}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/inventory/transfers/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Get a stock transfer",
                "operationId": "getStockTransfer",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Sell transfer ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.TransferView"}}}
                            ]
                        }
                    },
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Replace a stock transfer",
                "operationId": "updateStockTransfer",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Sell transfer ID", "name": "id", "in": "path", "required": true},
                    {"description": "Transfer", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transfer.TransferRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.TransferView"}}}
                            ]
                        }
                    },
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["transfers"],
                "summary": "Delete a stock transfer",
                "operationId": "deleteStockTransfer",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Sell transfer ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        },
        "/inventory/transfers/{id}/shipping-documents": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "List shipping documents of a transfer",
                "operationId": "listShippingDocuments",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Sell transfer ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/transfer.ShippingDocumentResponse"}}}}
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Request an upload URL for a shipping document",
                "operationId": "requestShippingDocumentUpload",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Sell transfer ID", "name": "id", "in": "path", "required": true},
                    {"description": "Document metadata", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transfer.ShippingDocumentRequest"}}
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/transfer.ShippingDocumentResponse"}}}
                            ]
                        }
                    }
                }
            }
        },
        "/inventory/transfers/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transfers"],
                "summary": "Change the status of a stock transfer",
                "operationId": "changeStockTransferStatus",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Sell transfer ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/transfer.ChangeStatusRequest"}}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/dto.Response"},
                                {"type": "object", "properties": {"data": {"$ref": "#/definitions/handler.TransferView"}}}
                            ]
                        }
                    },
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.Response"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/dto.Response"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/dto.FieldError"}},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "dto.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.Meta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "dto.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorInfo"},
                "meta": {"$ref": "#/definitions/dto.Meta"},
                "success": {"type": "boolean"}
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "database": {"type": "string", "example": "ok"},
                "status": {"type": "string", "example": "ok"}
            }
        },
        "handler.TransferListItemView": {
            "type": "object",
            "properties": {
                "final_total": {"type": "number"},
                "id": {"type": "string", "format": "uuid"},
                "origin_location_id": {"type": "string", "format": "uuid"},
                "ref_no": {"type": "string"},
                "status": {"$ref": "#/definitions/transfer.Status"},
                "status_label": {"type": "string", "example": "Pending"},
                "transaction_date": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "handler.TransferView": {
            "type": "object",
            "properties": {
                "additional_notes": {"type": "string"},
                "created_at": {"type": "string"},
                "created_by": {"type": "string", "format": "uuid"},
                "destination_location_id": {"type": "string", "format": "uuid"},
                "final_total": {"type": "number"},
                "id": {"type": "string", "format": "uuid"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/transfer.TransferLineResponse"}},
                "origin_location_id": {"type": "string", "format": "uuid"},
                "purchase_transaction_id": {"type": "string", "format": "uuid"},
                "ref_no": {"type": "string"},
                "shipping_charges": {"type": "number"},
                "status": {"$ref": "#/definitions/transfer.Status"},
                "status_label": {"type": "string", "example": "In Transit"},
                "total_before_tax": {"type": "number"},
                "transaction_date": {"type": "string"},
                "updated_at": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "transfer.ChangeStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"}
            }
        },
        "transfer.ReceiptLineRequest": {
            "type": "object",
            "required": ["product_id", "quantity", "variation_id"],
            "properties": {
                "exp_date": {"type": "string"},
                "lot_number": {"type": "string", "maxLength": 64},
                "mfg_date": {"type": "string"},
                "product_id": {"type": "string", "format": "uuid"},
                "purchase_price": {"type": "number"},
                "quantity": {"type": "number"},
                "variation_id": {"type": "string", "format": "uuid"}
            }
        },
        "transfer.ReceiptLineResponse": {
            "type": "object",
            "properties": {
                "exp_date": {"type": "string"},
                "id": {"type": "string", "format": "uuid"},
                "lot_number": {"type": "string"},
                "mfg_date": {"type": "string"},
                "product_id": {"type": "string", "format": "uuid"},
                "purchase_price": {"type": "number"},
                "quantity": {"type": "number"},
                "quantity_sold": {"type": "number"},
                "variation_id": {"type": "string", "format": "uuid"}
            }
        },
        "transfer.ReceiptResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "final_total": {"type": "number"},
                "id": {"type": "string", "format": "uuid"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/transfer.ReceiptLineResponse"}},
                "linked_to_oversold": {"type": "number"},
                "location_id": {"type": "string", "format": "uuid"},
                "ref_no": {"type": "string"},
                "transaction_date": {"type": "string"}
            }
        },
        "transfer.ReceiveStockRequest": {
            "type": "object",
            "required": ["lines", "location_id"],
            "properties": {
                "additional_notes": {"type": "string", "maxLength": 2000},
                "lines": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/transfer.ReceiptLineRequest"}},
                "location_id": {"type": "string", "format": "uuid"},
                "ref_no": {"type": "string", "maxLength": 64},
                "transaction_date": {"type": "string"}
            }
        },
        "transfer.ShippingDocumentRequest": {
            "type": "object",
            "required": ["content_type", "file_name", "file_size"],
            "properties": {
                "content_type": {"type": "string"},
                "file_name": {"type": "string", "maxLength": 255},
                "file_size": {"type": "integer", "minimum": 1}
            }
        },
        "transfer.ShippingDocumentResponse": {
            "type": "object",
            "properties": {
                "content_type": {"type": "string"},
                "created_at": {"type": "string"},
                "download_url": {"type": "string"},
                "file_name": {"type": "string"},
                "file_size": {"type": "integer"},
                "id": {"type": "string", "format": "uuid"},
                "transaction_id": {"type": "string", "format": "uuid"},
                "upload_url": {"type": "string"},
                "url_expires_at": {"type": "string"}
            }
        },
        "transfer.Status": {
            "type": "string",
            "enum": ["pending", "in_transit", "completed"],
            "x-enum-varnames": ["StatusPending", "StatusInTransit", "StatusCompleted"]
        },
        "transfer.StockResponse": {
            "type": "object",
            "properties": {
                "average_cost": {"type": "number"},
                "location_id": {"type": "string", "format": "uuid"},
                "product_id": {"type": "string", "format": "uuid"},
                "quantity": {"type": "number"},
                "updated_at": {"type": "string"},
                "variation_id": {"type": "string", "format": "uuid"}
            }
        },
        "transfer.TransferLineRequest": {
            "type": "object",
            "required": ["product_id", "quantity", "variation_id"],
            "properties": {
                "base_unit_multiplier": {"type": "number"},
                "enable_stock": {"type": "boolean"},
                "lot_no_line_id": {"type": "string", "format": "uuid"},
                "product_id": {"type": "string", "format": "uuid"},
                "quantity": {"type": "number"},
                "sub_unit_id": {"type": "string", "format": "uuid"},
                "unit_price": {"type": "number"},
                "variation_id": {"type": "string", "format": "uuid"}
            }
        },
        "transfer.TransferLineResponse": {
            "type": "object",
            "properties": {
                "base_quantity": {"type": "number"},
                "base_unit_multiplier": {"type": "number"},
                "enable_stock": {"type": "boolean"},
                "id": {"type": "string", "format": "uuid"},
                "line_total": {"type": "number"},
                "lot_no_line_id": {"type": "string", "format": "uuid"},
                "lot_number": {"type": "string"},
                "product_id": {"type": "string", "format": "uuid"},
                "purchase_line_id": {"type": "string", "format": "uuid"},
                "quantity": {"type": "number"},
                "quantity_sold": {"type": "number"},
                "sub_unit_id": {"type": "string", "format": "uuid"},
                "unit_price": {"type": "number"},
                "variation_id": {"type": "string", "format": "uuid"}
            }
        },
        "transfer.TransferRequest": {
            "type": "object",
            "required": ["destination_location_id", "lines", "origin_location_id", "status"],
            "properties": {
                "additional_notes": {"type": "string", "maxLength": 2000},
                "destination_location_id": {"type": "string", "format": "uuid"},
                "lines": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/transfer.TransferLineRequest"}},
                "origin_location_id": {"type": "string", "format": "uuid"},
                "ref_no": {"type": "string", "maxLength": 64},
                "shipping_charges": {"type": "number"},
                "status": {"type": "string"},
                "transaction_date": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token authentication. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Stock Transfer API",
	Description:      "Moves stock between locations and keeps lot consumption and costs consistent",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
