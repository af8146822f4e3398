package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAccountInactive    ErrCode = "ACCOUNT_INACTIVE"
	ErrNoSession          ErrCode = "NO_SESSION"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrCrossTenant      ErrCode = "CROSS_TENANT"
	ErrGrantEscalation  ErrCode = "GRANT_ESCALATION"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrUnknownResource ErrCode = "UNKNOWN_RESOURCE"
	ErrUnknownRole     ErrCode = "UNKNOWN_ROLE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Correo o contraseña incorrectos."
	case ErrAccountInactive:
		return "La cuenta no está activa. Contacte al administrador."
	case ErrNoSession:
		return "No hay una sesión activa. Inicie sesión nuevamente."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrPermissionDenied:
		return "Permiso denegado."
	case ErrCrossTenant:
		return "El usuario pertenece a otra empresa."
	case ErrGrantEscalation:
		return "No puede otorgar un permiso mayor al que usted posee."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Revise los datos enviados."
	case ErrInvalidID:
		return "Formato de ID no válido."
	case ErrInvalidPayload:
		return "Contenido de la solicitud no válido."
	case ErrUnknownResource:
		return "Recurso desconocido."
	case ErrUnknownRole:
		return "Rol desconocido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Intente de nuevo más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
