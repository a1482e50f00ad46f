// Package docs registers the OpenAPI document served under /swagger in dev mode.
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
		"/borrowers": {
			"post": {
				"tags": [
					"borrowers"
				],
				"summary": "Register a borrower",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/BorrowerResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/RegisterBorrowerRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"borrowers"
				],
				"summary": "List borrowers",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"parameters": [
					{
						"name": "outstanding_fines",
						"in": "query",
						"type": "boolean"
					}
				]
			}
		},
		"/borrowers/{id}": {
			"get": {
				"tags": [
					"borrowers"
				],
				"summary": "Get a borrower",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/BorrowerResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				]
			},
			"delete": {
				"tags": [
					"borrowers"
				],
				"summary": "Delete a borrower without loan records",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/borrowers/{id}/activate": {
			"post": {
				"tags": [
					"borrowers"
				],
				"summary": "Activate a borrower",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/BorrowerResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/borrowers/{id}/deactivate": {
			"post": {
				"tags": [
					"borrowers"
				],
				"summary": "Deactivate a borrower",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/BorrowerResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/borrowers/{id}/payments": {
			"post": {
				"tags": [
					"borrowers"
				],
				"summary": "Pay fines",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/PaymentResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					},
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/PaymentRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/borrowers/{id}/loans": {
			"delete": {
				"tags": [
					"borrowers"
				],
				"summary": "Purge a borrower's loan history",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/PurgeResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items": {
			"post": {
				"tags": [
					"items"
				],
				"summary": "Add or merge an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/AddItemResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/AddItemRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"items"
				],
				"summary": "List items",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "family",
						"in": "query",
						"type": "string"
					},
					{
						"name": "available",
						"in": "query",
						"type": "boolean"
					}
				]
			}
		},
		"/items/import": {
			"post": {
				"tags": [
					"items"
				],
				"summary": "Import items record by record",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/ImportReport"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/AddItemRequest"
							}
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items/{family}/{id}": {
			"get": {
				"tags": [
					"items"
				],
				"summary": "Get an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/ItemResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "family",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				]
			},
			"delete": {
				"tags": [
					"items"
				],
				"summary": "Remove an item without loan records",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "family",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items/{family}/{id}/loans": {
			"delete": {
				"tags": [
					"items"
				],
				"summary": "Purge an item's loan history",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/PurgeResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "family",
						"in": "path",
						"required": true,
						"type": "string"
					},
					{
						"name": "id",
						"in": "path",
						"required": true,
						"type": "integer"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/loans": {
			"post": {
				"tags": [
					"loans"
				],
				"summary": "Borrow an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/BorrowResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"503": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/LoanRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"loans"
				],
				"summary": "List loans",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "borrower_id",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "item_id",
						"in": "query",
						"type": "integer"
					},
					{
						"name": "family",
						"in": "query",
						"type": "string"
					},
					{
						"name": "open",
						"in": "query",
						"type": "boolean"
					}
				]
			}
		},
		"/loans/{loan_ulid}": {
			"get": {
				"tags": [
					"loans"
				],
				"summary": "Get a loan",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/LoanResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "loan_ulid",
						"in": "path",
						"required": true,
						"type": "string"
					}
				]
			}
		},
		"/returns": {
			"post": {
				"tags": [
					"loans"
				],
				"summary": "Return an item",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/ReturnResponse"
						}
					},
					"400": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"404": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"409": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					},
					"503": {
						"description": "error",
						"schema": {
							"$ref": "#/definitions/Error"
						}
					}
				},
				"parameters": [
					{
						"name": "body",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/LoanRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"definitions": {
		"Error": {
			"type": "object",
			"properties": {
				"error": {
					"type": "object",
					"properties": {
						"code": {
							"type": "string"
						},
						"message": {
							"type": "string"
						}
					}
				}
			}
		},
		"RegisterBorrowerRequest": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				}
			}
		},
		"AddItemRequest": {
			"type": "object",
			"properties": {
				"family": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"quantity": {
					"type": "integer"
				},
				"loan_period_seconds": {
					"type": "integer"
				},
				"author": {
					"type": "string"
				},
				"genre": {
					"type": "string"
				},
				"pages": {
					"type": "integer"
				}
			}
		},
		"LoanRequest": {
			"type": "object",
			"properties": {
				"borrower_id": {
					"type": "integer"
				},
				"item_id": {
					"type": "integer"
				},
				"family": {
					"type": "string"
				}
			}
		},
		"PaymentRequest": {
			"type": "object",
			"properties": {
				"amount": {
					"type": "string"
				}
			}
		},
		"BorrowerResponse": {
			"type": "object",
			"properties": {
				"borrower_id": {
					"type": "integer"
				},
				"username": {
					"type": "string"
				},
				"first_name": {
					"type": "string"
				},
				"last_name": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"active": {
					"type": "boolean"
				},
				"fines": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"ItemResponse": {
			"type": "object",
			"properties": {
				"item_id": {
					"type": "integer"
				},
				"family": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"stock": {
					"type": "integer"
				},
				"quantity_available": {
					"type": "integer"
				},
				"loan_period_seconds": {
					"type": "integer"
				},
				"author": {
					"type": "string"
				},
				"genre": {
					"type": "string"
				},
				"pages": {
					"type": "integer"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"LoanResponse": {
			"type": "object",
			"properties": {
				"loan_ulid": {
					"type": "string"
				},
				"family": {
					"type": "string"
				},
				"borrower_id": {
					"type": "integer"
				},
				"item_id": {
					"type": "integer"
				},
				"borrowed_at": {
					"type": "string"
				},
				"due_at": {
					"type": "string"
				},
				"returned_at": {
					"type": "string"
				},
				"fine_charged": {
					"type": "string"
				},
				"open": {
					"type": "boolean"
				}
			}
		},
		"BorrowResponse": {
			"type": "object",
			"properties": {
				"loan": {
					"$ref": "#/definitions/LoanResponse"
				},
				"quantity_available": {
					"type": "integer"
				}
			}
		},
		"ReturnResponse": {
			"type": "object",
			"properties": {
				"loan": {
					"$ref": "#/definitions/LoanResponse"
				},
				"on_time": {
					"type": "boolean"
				},
				"late_seconds": {
					"type": "integer"
				},
				"lateness": {
					"type": "string"
				},
				"fine": {
					"type": "string"
				},
				"quantity_available": {
					"type": "integer"
				},
				"borrower_fines": {
					"type": "string"
				}
			}
		},
		"PaymentResponse": {
			"type": "object",
			"properties": {
				"borrower_id": {
					"type": "integer"
				},
				"paid": {
					"type": "string"
				},
				"remaining": {
					"type": "string"
				}
			}
		},
		"PurgeResponse": {
			"type": "object",
			"properties": {
				"deleted": {
					"type": "integer"
				},
				"open_loans_purged": {
					"type": "integer"
				}
			}
		},
		"AddItemResponse": {
			"type": "object",
			"properties": {
				"item": {
					"$ref": "#/definitions/ItemResponse"
				},
				"merged": {
					"type": "boolean"
				}
			}
		},
		"ImportReport": {
			"type": "object",
			"properties": {
				"added": {
					"type": "integer"
				},
				"merged": {
					"type": "integer"
				},
				"failed": {
					"type": "integer"
				},
				"records": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"index": {
								"type": "integer"
							},
							"name": {
								"type": "string"
							},
							"status": {
								"type": "string"
							},
							"item_id": {
								"type": "integer"
							},
							"code": {
								"type": "string"
							},
							"error": {
								"type": "string"
							}
						}
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "",
	BasePath:		 "/api/v1",
	Schemes:		  []string{"https"},
	Title:			"Lending Desk API",
	Description:	  "Loans, returns and overdue fines for the device and book lending desk.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:		"{{",
	RightDelim:	   "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
