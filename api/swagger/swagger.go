package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Schedule Simulation API",
        "description": "Builds timetable problems, pre-fills them with heuristics and runs them on the external solver.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Simulation",
            "description": "Schedule simulation wizard"
        },
        {
            "name": "Observability",
            "description": "Metrics"
        }
    ],
    "paths": {
        "/simulations/sessions": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Open a simulation session",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/CreateSessionRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Get the current step view of a session",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Discard a session",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/data-source": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Load entities from the institution or the synthetic generator",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/DataSourceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "502": {
                        "description": "Data source failed",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/navigate": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Move the wizard (next, back, goto, reset)",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/NavigateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Step blocked or run in progress",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/config": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Replace the simulation config",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SimulationConfig"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/teachers": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Add a teacher",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/TeacherRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/teachers/{id}": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Rename a teacher or change its weekly quota",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TeacherRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Remove a teacher with its preference and requirements",
                "parameters": [
                    {
                        "name": "sessionId",
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
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/teachers/{id}/preference": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Store a teacher preference",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TeacherPreferenceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/subjects": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Add a subject",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/NameRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/subjects/{id}": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Rename a subject",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/NameRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Remove a subject with its constraint and requirements",
                "parameters": [
                    {
                        "name": "sessionId",
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
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/subjects/{id}/constraint": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Store a subject constraint",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SubjectConstraintRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/classes": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Add a class",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/ClassRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/classes/{id}": {
            "delete": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Remove a class with its requirements",
                "parameters": [
                    {
                        "name": "sessionId",
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
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/requirements": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Set the weekly periods of a class and subject",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RequirementRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/requirements/{id}/teacher": {
            "put": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Assign a teacher to a requirement",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignTeacherRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/requirements/{id}": {
            "delete": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Remove a requirement",
                "parameters": [
                    {
                        "name": "sessionId",
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
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/distribute/{strategy}": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Apply a distribution heuristic",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "strategy",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "randomize-periods",
                            "randomize-teachers",
                            "balance-teachers"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/run": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Submit the model to the solver",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Step blocked or run in progress",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/result": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Get the normalised outcome of the last run",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/result/entities": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "List the classes and teachers of the last schedule",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/result/classes/{name}": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Weekly grid of one class",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/result/teachers/{name}": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Weekly grid of one teacher",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "name",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/result/heatmap": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Conflict heatmap of a failed run",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/simulations/sessions/{sessionId}/result/export": {
            "post": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Render a grid to CSV or PDF",
                "parameters": [
                    {
                        "name": "sessionId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ExportRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": [
                    "Simulation"
                ],
                "summary": "Download an exported timetable",
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    }
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Aggregated request, session and run metrics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "CreateSessionRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "working_days": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "default_periods_per_day": {
                    "type": "integer"
                }
            }
        },
        "SyntheticParams": {
            "type": "object",
            "properties": {
                "num_teachers": {
                    "type": "integer"
                },
                "num_subjects": {
                    "type": "integer"
                },
                "num_grades": {
                    "type": "integer"
                },
                "classes_per_grade": {
                    "type": "integer"
                },
                "periods_per_day": {
                    "type": "integer"
                }
            }
        },
        "DataSourceRequest": {
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "institution",
                        "synthetic"
                    ]
                },
                "params": {
                    "$ref": "#/definitions/SyntheticParams"
                }
            },
            "required": [
                "kind"
            ]
        },
        "NavigateRequest": {
            "type": "object",
            "properties": {
                "action": {
                    "type": "string",
                    "enum": [
                        "next",
                        "back",
                        "goto",
                        "reset"
                    ]
                },
                "target": {
                    "type": "string",
                    "enum": [
                        "data_source",
                        "basic_config",
                        "teacher_preferences",
                        "subject_constraints",
                        "period_allocation",
                        "review_and_run"
                    ]
                }
            },
            "required": [
                "action"
            ]
        },
        "SimulationConfig": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "working_days": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "periods_per_day": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                },
                "default_periods_per_day": {
                    "type": "integer"
                },
                "max_teacher_periods_per_day": {
                    "type": "integer"
                },
                "max_consecutive_periods": {
                    "type": "integer"
                },
                "time_limit_seconds": {
                    "type": "integer"
                }
            }
        },
        "TeacherRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "weekly_quota": {
                    "type": "integer"
                }
            }
        },
        "NameRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                }
            }
        },
        "ClassRequest": {
            "type": "object",
            "properties": {
                "grade": {
                    "type": "string"
                },
                "class_name": {
                    "type": "string"
                }
            }
        },
        "RequirementRequest": {
            "type": "object",
            "properties": {
                "class_id": {
                    "type": "integer"
                },
                "subject_id": {
                    "type": "integer"
                },
                "periods_per_week": {
                    "type": "integer"
                }
            },
            "required": [
                "class_id",
                "subject_id"
            ]
        },
        "AssignTeacherRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {
                    "type": "integer",
                    "x-nullable": true
                }
            }
        },
        "TeacherPreferenceRequest": {
            "type": "object",
            "properties": {
                "weekly_quota": {
                    "type": "integer"
                },
                "min_daily_periods": {
                    "type": "integer"
                },
                "max_daily_periods": {
                    "type": "integer"
                },
                "max_consecutive": {
                    "type": "integer"
                },
                "prefer_time": {
                    "type": "string",
                    "enum": [
                        "any",
                        "early",
                        "late"
                    ]
                },
                "teaching_style": {
                    "type": "string",
                    "enum": [
                        "any",
                        "consecutive",
                        "distributed"
                    ]
                },
                "golden_days": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "SubjectConstraintRequest": {
            "type": "object",
            "properties": {
                "requires_consecutive": {
                    "type": "boolean"
                },
                "consecutive_count": {
                    "type": "integer"
                },
                "avoid_first_period": {
                    "type": "boolean"
                },
                "avoid_last_period": {
                    "type": "boolean"
                },
                "no_consecutive_days": {
                    "type": "boolean"
                },
                "max_per_day": {
                    "type": "integer"
                },
                "is_heavy": {
                    "type": "boolean"
                }
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "view": {
                    "type": "string",
                    "enum": [
                        "class",
                        "teacher"
                    ]
                },
                "key": {
                    "type": "string"
                },
                "format": {
                    "type": "string",
                    "enum": [
                        "csv",
                        "pdf"
                    ]
                }
            },
            "required": [
                "view",
                "key",
                "format"
            ]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
