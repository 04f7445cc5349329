package entity

import "time"

// Estados de un registro de sincronización. Toda operación termina en
// exactamente uno de estos; ninguna excepción escapa al disparador.
const (
	SyncStatusSuccess        = "Success"
	SyncStatusInvalid        = "Invalid"
	SyncStatusError          = "Error"
	SyncStatusPartialSuccess = "Partial Success"
	SyncStatusFailed         = "Failed"
)

// SyncLog bitácora de una operación de sincronización (pedido, reembolso,
// inventario). Es el único canal observable del resultado de cada evento.
type SyncLog struct {
	ID        string
	Method    string
	Status    string
	Message   string
	Exception string
	RequestID string
	CreatedAt time.Time
}
