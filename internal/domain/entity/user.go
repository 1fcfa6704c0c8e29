package entity

import "time"

// Roles de usuario. El rol viaja en el token; el core solo consume actorId.
const (
	RoleAdmin     = "admin"
	RoleEncargado = "encargado"
	RoleBarra     = "barra"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // active | disabled
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
