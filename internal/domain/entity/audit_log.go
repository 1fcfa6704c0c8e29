package entity

import "time"

// AuditLog es un registro append-only de acciones de usuario sobre la API.
// Su escritura es best-effort: una falla al auditar no aborta la operación.
type AuditLog struct {
	ID         string
	ActorID    string
	ActorName  string
	Action     string // ej. 'stock.movement', 'process.finalize'
	EntityType string
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}
