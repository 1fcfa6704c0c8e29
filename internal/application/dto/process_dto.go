package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProcessRequest entrada para arrancar un proceso de producción.
type CreateProcessRequest struct {
	RecipeID         string `json:"recipe_id"`
	RecipeName       string `json:"recipe_name" validate:"required"`
	TargetDurationMs int64  `json:"target_duration_ms"`
}

// PatchProcessRequest actualización parcial (solo campos permitidos).
type PatchProcessRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=running paused finished"`
	Minimized  *bool   `json:"minimized"`
	RecipeName *string `json:"recipe_name"`
}

// FinalizeProcessRequest entrada para finalizar un proceso.
type FinalizeProcessRequest struct {
	ProducedQuantity decimal.Decimal `json:"produced_quantity"`
	OutputProductID  string          `json:"output_product_id"`
	OutputUnit       string          `json:"output_unit"`
	OutputBatchCode  string          `json:"output_batch_code"`
	OutputExpiry     *time.Time      `json:"output_expiry"`
}

// ProcessResponse salida de un proceso. RemainingMs y ElapsedMs se derivan
// al momento de serializar, nunca se persisten.
type ProcessResponse struct {
	ID               string     `json:"id"`
	RecipeID         string     `json:"recipe_id,omitempty"`
	RecipeName       string     `json:"recipe_name"`
	OwnerID          string     `json:"owner_id"`
	OwnerName        string     `json:"owner_name,omitempty"`
	Status           string     `json:"status"`
	Minimized        bool       `json:"minimized"`
	TargetDurationMs int64      `json:"target_duration_ms"`
	ElapsedMs        int64      `json:"elapsed_ms"`
	RemainingMs      int64      `json:"remaining_ms"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ProcessListResponse lista de procesos.
type ProcessListResponse struct {
	Items []ProcessResponse `json:"items"`
}

// FinalizeProcessResponse resultado de la finalización.
type FinalizeProcessResponse struct {
	Process          ProcessResponse          `json:"process"`
	AlreadyFinalized bool                     `json:"already_finalized"`
	Consumption      *ConsumeByRecipeResponse `json:"consumption,omitempty"`
	Output           *ApplyMovementResponse   `json:"output,omitempty"`
}
