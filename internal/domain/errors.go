package domain

import "errors"

// Errores de dominio (sin dependencias externas). Se comparan con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// ErrConflict indica una escritura concurrente detectada (lock timeout o
	// fallo de serialización). Es el único error reintentable: el motor lo
	// reintenta un número acotado de veces antes de devolverlo al caller.
	ErrConflict = errors.New("conflicto concurrente sobre el saldo")

	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrInsufficientAvailable = errors.New("cantidad disponible insuficiente para reservar")

	ErrSessionClosed      = errors.New("la sesión de caja no está abierta")
	ErrSessionAlreadyOpen = errors.New("ya existe una sesión abierta para esta caja")

	ErrInvalidDenominationTotal = errors.New("el total contado no coincide con la suma de denominaciones")
	ErrReferenceNotFound        = errors.New("documento de origen no encontrado")
)
