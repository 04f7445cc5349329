package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrRemoteNotFound = errors.New("recurso remoto no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrConfiguration  = errors.New("configuración incompleta")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrItemsMissing   = errors.New("productos del pedido sin mapeo en el catálogo")
)
