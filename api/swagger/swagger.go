package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Maintenance Tracker API",
        "description": "Equipment registry, maintenance log, dashboards and table sessions.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Equipment", "description": "Equipment registry"},
        {"name": "Maintenance", "description": "Maintenance log"},
        {"name": "Dashboard", "description": "Chart aggregates"},
        {"name": "Tables", "description": "Server-held table sessions with inline editing"},
        {"name": "Realtime", "description": "Collection change stream"}
    ],
    "parameters": {
        "q": {"name": "q", "in": "query", "type": "string", "description": "Case-insensitive search across all columns"},
        "sort": {"name": "sort", "in": "query", "type": "string"},
        "dir": {"name": "dir", "in": "query", "type": "string", "enum": ["asc", "desc"]},
        "group": {"name": "group", "in": "query", "type": "string"},
        "expand": {"name": "expand", "in": "query", "type": "string", "description": "Comma separated group keys to expand"},
        "tableId": {"name": "table", "in": "path", "type": "string", "required": true}
    },
    "paths": {
        "/equipment": {
            "get": {
                "tags": ["Equipment"],
                "summary": "List equipment in storage order",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Equipment"],
                "summary": "Create equipment, or replace the collection with mode=replace",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "mode", "in": "query", "type": "string", "enum": ["replace"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEquipmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Equipment"],
                "summary": "Merge fields into the record named by id",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Patch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment/{id}": {
            "get": {
                "tags": ["Equipment"],
                "summary": "Get equipment by id",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/equipment/view": {
            "get": {
                "tags": ["Equipment"],
                "summary": "Filtered, sorted and grouped projection. Filters use filter.<field>=a,b and range.<field>=min,max",
                "parameters": [
                    {"$ref": "#/parameters/q"}, {"$ref": "#/parameters/sort"}, {"$ref": "#/parameters/dir"},
                    {"$ref": "#/parameters/group"}, {"$ref": "#/parameters/expand"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/equipment/export": {
            "get": {
                "tags": ["Equipment"],
                "summary": "Export the projection as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"$ref": "#/parameters/q"}, {"$ref": "#/parameters/sort"}, {"$ref": "#/parameters/dir"}, {"$ref": "#/parameters/group"}
                ],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/maintenance": {
            "get": {
                "tags": ["Maintenance"],
                "summary": "List maintenance records in storage order",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Maintenance"],
                "summary": "Create a record, or replace the collection with mode=replace",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "mode", "in": "query", "type": "string", "enum": ["replace"]},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateMaintenanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Maintenance"],
                "summary": "Merge fields into the record named by id",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Patch"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/maintenance/{id}": {
            "get": {
                "tags": ["Maintenance"],
                "summary": "Get maintenance record by id",
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/maintenance/enriched": {
            "get": {
                "tags": ["Maintenance"],
                "summary": "Records joined with equipment name and department; unresolved references read N/A",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/maintenance/view": {
            "get": {
                "tags": ["Maintenance"],
                "summary": "Filtered, sorted and grouped projection of enriched records",
                "parameters": [
                    {"$ref": "#/parameters/q"}, {"$ref": "#/parameters/sort"}, {"$ref": "#/parameters/dir"},
                    {"$ref": "#/parameters/group"}, {"$ref": "#/parameters/expand"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/maintenance/export": {
            "get": {
                "tags": ["Maintenance"],
                "summary": "Export the projection as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "File", "schema": {"type": "file"}}}
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Counts, distributions, hours by department and recent maintenance",
                "responses": {"200": {"description": "OK; meta.cache_hit reports cache use", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/status-distribution": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Equipment count per status, every status present",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/dashboard/hours-by-department": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Maintenance hours per department, every department present",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tables/{table}": {
            "post": {
                "tags": ["Tables"],
                "summary": "Open a session; the path segment names the collection",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "get": {
                "tags": ["Tables"],
                "summary": "Current session state",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Tables"],
                "summary": "Close a session",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {"204": {"description": "Closed"}}
            }
        },
        "/tables/{table}/view": {
            "patch": {
                "tags": ["Tables"],
                "summary": "Change filters, search, sort or grouping",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tables/{table}/sort/{field}": {
            "post": {
                "tags": ["Tables"],
                "summary": "Cycle column sort: ascending, descending, none",
                "parameters": [{"$ref": "#/parameters/tableId"}, {"name": "field", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tables/{table}/groups/{key}/toggle": {
            "post": {
                "tags": ["Tables"],
                "summary": "Expand or collapse a group",
                "parameters": [{"$ref": "#/parameters/tableId"}, {"name": "key", "in": "path", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tables/{table}/refresh": {
            "post": {
                "tags": ["Tables"],
                "summary": "Reload from the store; on failure the last snapshot is kept",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Store unavailable, retryable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tables/{table}/edit": {
            "post": {
                "tags": ["Tables"],
                "summary": "Begin editing a cell",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Save in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Tables"],
                "summary": "Replace the buffered value",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Tables"],
                "summary": "Abandon the active edit",
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/tables/{table}/edit/save": {
            "post": {
                "tags": ["Tables"],
                "summary": "Persist the active edit",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tableId"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Rejected value; edit stays open", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ws": {
            "get": {
                "tags": ["Realtime"],
                "summary": "Websocket stream of collection_changed events",
                "parameters": [{"name": "collection", "in": "query", "type": "string"}],
                "responses": {"101": {"description": "Switching protocols"}}
            }
        }
    },
    "definitions": {
        "CreateEquipmentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "minLength": 3, "maxLength": 255},
                "location": {"type": "string"},
                "department": {"type": "string", "enum": ["Machining", "Assembly", "Packaging", "Shipping"]},
                "model": {"type": "string"},
                "serialNumber": {"type": "string"},
                "installDate": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["Operational", "Down", "Maintenance", "Retired"]}
            },
            "required": ["name", "location", "department", "model", "serialNumber", "installDate", "status"]
        },
        "CreateMaintenanceRequest": {
            "type": "object",
            "properties": {
                "equipmentId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "type": {"type": "string", "enum": ["Preventive", "Repair", "Emergency"]},
                "technician": {"type": "string"},
                "hoursSpent": {"type": "number", "minimum": 0, "maximum": 24},
                "description": {"type": "string", "minLength": 10},
                "partsReplaced": {"type": "array", "items": {"type": "string"}},
                "priority": {"type": "string", "enum": ["Low", "Medium", "High"]},
                "completionStatus": {"type": "string", "enum": ["Complete", "Incomplete", "Pending Parts"]}
            },
            "required": ["equipmentId", "date", "type", "technician", "hoursSpent", "description", "priority", "completionStatus"]
        },
        "Patch": {
            "type": "object",
            "properties": {"id": {"type": "string"}},
            "required": ["id"],
            "additionalProperties": true
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "retryable": {"type": "boolean"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
