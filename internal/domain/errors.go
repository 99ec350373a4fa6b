package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrInvalidRole          = errors.New("rol no permitido para recibir alertas")
	ErrConfigNotInitialized = errors.New("configuración de alertas de stock no inicializada")
)
