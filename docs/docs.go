// Package docs holds the Swagger 2.0 document served under /swagger/.
// It is maintained by hand next to the handler annotations.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Вход, выдаёт JWT",
                "parameters": [
                    {
                        "description": "Email и пароль",
                        "name": "input",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/services.LoginInput"}
                    }
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {
                        "description": "Данные пользователя",
                        "name": "input",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/services.RegisterInput"}
                    }
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/competitions/{competitionID}/scores": {
            "get": {
                "produces": ["application/json"],
                "tags": ["scores"],
                "summary": "Таблица соревнования",
                "parameters": [
                    {"type": "integer", "description": "ID соревнования", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Leaderboard"}}}
            }
        },
        "/competitions/{competitionID}/scores/calculate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Оценивает прогнозы по финальным матчам, суммирует и ранжирует участников в одной транзакции.",
                "produces": ["application/json"],
                "tags": ["scores"],
                "summary": "Пересчитать очки соревнования",
                "parameters": [
                    {"type": "integer", "description": "ID соревнования", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Leaderboard"}},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        },
        "/leagues/{leagueID}/standings/calculate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Учитываются только завершённые соревнования.",
                "produces": ["application/json"],
                "tags": ["standings"],
                "summary": "Пересчитать сезонную таблицу лиги",
                "parameters": [
                    {"type": "integer", "description": "ID лиги", "name": "leagueID", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Standings"}}}
            }
        }
    },
    "definitions": {
        "models.Leaderboard": {
            "type": "object",
            "properties": {
                "competition_id": {"type": "integer"},
                "status": {"type": "string"},
                "provisional": {"type": "boolean"},
                "calculated_at": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/models.Score"}}
            }
        },
        "models.Score": {
            "type": "object",
            "properties": {
                "competition_id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "total_points": {"type": "integer"},
                "correct_picks": {"type": "integer"},
                "total_picks": {"type": "integer"},
                "rank": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "models.SeasonStanding": {
            "type": "object",
            "properties": {
                "league_id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "total_points": {"type": "integer"},
                "weeks_participated": {"type": "integer"},
                "correct_picks": {"type": "integer"},
                "total_picks": {"type": "integer"},
                "average_points_per_week": {"type": "number"},
                "rank": {"type": "integer"},
                "updated_at": {"type": "string"}
            }
        },
        "models.Standings": {
            "type": "object",
            "properties": {
                "league_id": {"type": "integer"},
                "completed_competitions": {"type": "integer"},
                "calculated_at": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/models.SeasonStanding"}}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "nickname": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
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
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pick'em League API",
	Description:      "Weekly pick'em leagues: picks, grading, leaderboards and season standings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
