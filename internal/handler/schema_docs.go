package handler

import (
	"collab-board/internal/domain"
)

// SchemaDocumentation references the nested board types so swag includes
// them in the swagger definitions even though handlers only name the DTOs.
type SchemaDocumentation struct {
	Column     domain.Column     `json:"column"`
	Card       domain.Card       `json:"card"`
	SharedUser domain.SharedUser `json:"sharedUser"`
	BoardEvent domain.BoardEvent `json:"boardEvent"`
}

// GetSchemaDocumentation is never routed. It exists only for swag.
// @Summary      Schema Documentation (Not a real endpoint)
// @Description  This endpoint does not exist. It's used to document nested board schemas.
// @Tags         internal
// @Produce      json
// @Success      200 {object} SchemaDocumentation
// @Router       /internal/schemas [get]
func GetSchemaDocumentation() {}
