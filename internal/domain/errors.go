package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Motor de stock.
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrBatchNotFound     = errors.New("lote no encontrado")
	ErrBatchInsufficient = errors.New("cantidad insuficiente en el lote")

	// Máquina de estados de producción.
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrAlreadyFinalized  = errors.New("proceso ya finalizado")
)
