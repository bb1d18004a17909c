package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// Los errores de validación (causa desconocida, cantidad inválida, ítem no
// rastreable) se rechazan antes de cualquier persistencia. Los errores de
// negocio (stock/disponibilidad insuficiente) dejan el estado intacto.
// ErrLockTimeout es seguro de reintentar: nada se escribe sin el lock.
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrConflict                   = errors.New("conflicto con el estado actual")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrUnknownCause               = errors.New("causa de transacción desconocida")
	ErrInvalidQuantity            = errors.New("la cantidad debe ser positiva")
	ErrItemNotTrackable           = errors.New("el ítem no es rastreable en inventario")
	ErrInsufficientStock          = errors.New("stock insuficiente: la aprobación dejaría disponibilidad negativa")
	ErrInsufficientAvailableStock = errors.New("stock disponible insuficiente para reservar")
	ErrLockTimeout                = errors.New("no se pudo adquirir el lock del ítem a tiempo")
)
