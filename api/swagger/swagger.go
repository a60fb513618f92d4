package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OKR Performance API",
        "description": "Task score distribution, review aggregation and monthly performance ranking",
        "version": "1.0.0"
    },
    "basePath": "/",
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
            "name": "Tasks",
            "description": "Task status and score distribution"
        },
        {
            "name": "Reviews",
            "description": "Task and monthly reviews"
        },
        {
            "name": "Evaluations",
            "description": "Work hours, self, peer and admin evaluations"
        },
        {
            "name": "Performance",
            "description": "Monthly scoring and ranking"
        },
        {
            "name": "Reports",
            "description": "Department rollups"
        },
        {
            "name": "Observability",
            "description": "Counters"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check against Postgres and Redis",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unreachable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/metrics/snapshot": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Scoring and cache counters",
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
        "/api/v1/tasks/{id}/status": {
            "patch": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Change a task's status",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Task ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateTaskStatusRequest"
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
        "/api/v1/tasks/{id}/score": {
            "get": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Task score distribution",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Task ID"
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
            "post": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Recompute a completed task's score distribution",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Task ID"
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
        "/api/v1/users/{id}/monthly-score": {
            "get": {
                "tags": [
                    "Tasks"
                ],
                "summary": "Sum of a user's task allocations for a month",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "User ID"
                    },
                    {
                        "name": "month",
                        "in": "query",
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
        "/api/v1/reviews/tasks": {
            "post": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Review a completed task",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/TaskReviewRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
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
        "/api/v1/reviews/tasks/{id}": {
            "get": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Reviews of a task",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Task ID"
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
        "/api/v1/reviews/tasks/{id}/summary": {
            "get": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Weighted review summary of a task",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Task ID"
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
        "/api/v1/reviews/monthly": {
            "post": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Review a colleague for a month",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MonthlyReviewRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
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
            "get": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Monthly reviews received by a user",
                "parameters": [
                    {
                        "name": "reviewee",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "month",
                        "in": "query",
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
        "/api/v1/reviews/reviewable/tasks": {
            "get": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Completed tasks the caller can still review",
                "parameters": [],
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
        "/api/v1/reviews/reviewable/users": {
            "get": {
                "tags": [
                    "Reviews"
                ],
                "summary": "Colleagues the caller has not reviewed for a month",
                "parameters": [
                    {
                        "name": "month",
                        "in": "query",
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
        "/api/v1/work-hours": {
            "put": {
                "tags": [
                    "Evaluations"
                ],
                "summary": "Record a user's work hours for a month",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/WorkHoursRequest"
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
        "/api/v1/evaluations/self": {
            "post": {
                "tags": [
                    "Evaluations"
                ],
                "summary": "Submit the caller's self evaluation",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SelfEvaluationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
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
        "/api/v1/evaluations/peer": {
            "post": {
                "tags": [
                    "Evaluations"
                ],
                "summary": "Score and rank a colleague's evaluation",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PeerEvaluationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
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
        "/api/v1/evaluations/{id}/admin": {
            "patch": {
                "tags": [
                    "Evaluations"
                ],
                "summary": "Set the admin final score of an evaluation",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Evaluation ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AdminOverrideRequest"
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
        "/api/v1/evaluations/{id}/admin-history": {
            "get": {
                "tags": [
                    "Evaluations"
                ],
                "summary": "Admin score history of an evaluation",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Evaluation ID"
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
        "/api/v1/performance/{month}/users/{id}/calculate": {
            "post": {
                "tags": [
                    "Performance"
                ],
                "summary": "Recompute one user's monthly score",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "User ID"
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
        "/api/v1/performance/{month}/calculate": {
            "post": {
                "tags": [
                    "Performance"
                ],
                "summary": "Queue a recalculation of every active user for a month",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
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
                        "description": "A recalculation of the month is already pending"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/performance/jobs/{id}": {
            "get": {
                "tags": [
                    "Performance"
                ],
                "summary": "Status of a queued month recalculation",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Job ID"
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
        "/api/v1/performance/{month}/rerank": {
            "post": {
                "tags": [
                    "Performance"
                ],
                "summary": "Recompute the ranks of a month",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
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
        "/api/v1/performance/{month}/ranking": {
            "get": {
                "tags": [
                    "Performance"
                ],
                "summary": "Ranked scores of a month",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
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
        "/api/v1/performance/{month}/users/{id}": {
            "get": {
                "tags": [
                    "Performance"
                ],
                "summary": "Dimension breakdown of a user's monthly score",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "User ID"
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
        "/api/v1/reports/{month}/departments/regenerate": {
            "post": {
                "tags": [
                    "Reports"
                ],
                "summary": "Rebuild the department rollup of a month",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
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
        "/api/v1/reports/{month}/departments": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Department rollup of a month",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
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
        "/api/v1/reports/{month}/departments/{department}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "One department's rollup and top performer",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
                    },
                    {
                        "name": "department",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "hardware",
                            "software",
                            "marketing"
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
        "/api/v1/reports/{month}/export": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Download the department rollup",
                "parameters": [
                    {
                        "name": "month",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "YYYY-MM or YYYY-MM-DD"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ],
                        "default": "csv"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
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
        "UpdateTaskStatusRequest": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "todo",
                        "in_progress",
                        "completed",
                        "postponed"
                    ]
                },
                "postpone_reason": {
                    "type": "string"
                }
            }
        },
        "TaskReviewRequest": {
            "type": "object",
            "required": [
                "task_id",
                "rating"
            ],
            "properties": {
                "task_id": {
                    "type": "string"
                },
                "rating": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "comment": {
                    "type": "string"
                },
                "is_anonymous": {
                    "type": "boolean"
                }
            }
        },
        "MonthlyReviewRequest": {
            "type": "object",
            "required": [
                "reviewee_id",
                "month",
                "rating"
            ],
            "properties": {
                "reviewee_id": {
                    "type": "string"
                },
                "month": {
                    "type": "string"
                },
                "rating": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "comment": {
                    "type": "string"
                },
                "is_anonymous": {
                    "type": "boolean"
                }
            }
        },
        "WorkHoursRequest": {
            "type": "object",
            "required": [
                "user_id",
                "month"
            ],
            "properties": {
                "user_id": {
                    "type": "string"
                },
                "month": {
                    "type": "string"
                },
                "hours": {
                    "type": "number",
                    "minimum": 0,
                    "maximum": 744
                }
            }
        },
        "SelfEvaluationRequest": {
            "type": "object",
            "required": [
                "month"
            ],
            "properties": {
                "month": {
                    "type": "string"
                },
                "culture_understanding_score": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "culture_understanding_text": {
                    "type": "string"
                },
                "culture_understanding_option": {
                    "type": "string"
                },
                "team_fit_option": {
                    "type": "string"
                },
                "team_fit_text": {
                    "type": "string"
                },
                "team_fit_ranking": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "monthly_growth_score": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "monthly_growth_text": {
                    "type": "string"
                },
                "monthly_growth_option": {
                    "type": "string"
                },
                "biggest_contribution_score": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "biggest_contribution_text": {
                    "type": "string"
                },
                "biggest_contribution_option": {
                    "type": "string"
                }
            }
        },
        "PeerEvaluationRequest": {
            "type": "object",
            "required": [
                "evaluation_id",
                "score",
                "ranking"
            ],
            "properties": {
                "evaluation_id": {
                    "type": "string"
                },
                "score": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "ranking": {
                    "type": "integer",
                    "minimum": 1
                },
                "comment": {
                    "type": "string"
                },
                "is_anonymous": {
                    "type": "boolean"
                }
            }
        },
        "AdminOverrideRequest": {
            "type": "object",
            "required": [
                "score"
            ],
            "properties": {
                "score": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 10
                },
                "comment": {
                    "type": "string"
                }
            }
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
