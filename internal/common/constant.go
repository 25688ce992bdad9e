package common

// Cookie names carrying the session credentials. Both are HttpOnly, so only
// the server and the client's cookie jar ever see their values.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

// Machine-readable codes carried in 401 response bodies. The client decides
// whether a renewal is worth attempting from these.
const (
	CodeTokenExpired      = "token_expired"
	CodeMissingToken      = "missing_token"
	CodeInvalidCredential = "invalid_credential"
	CodeRefreshInvalid    = "refresh_invalid"
	CodeBadCredentials    = "bad_credentials"
	CodeValidation        = "validation_failed"
)

// Other machine-readable error codes.
const (
	CodeInactiveUser        = "inactive_user"
	CodeForbidden           = "forbidden"
	CodeNotFound            = "not_found"
	CodeAlreadyExists       = "already_exists"
	CodeBadRequest          = "bad_request"
	CodeAttachmentsDisabled = "attachments_disabled"
	CodeInternal            = "internal_error"
)

// CorrelationIDHeader is echoed on every response and may be supplied by
// the caller.
const CorrelationIDHeader = "X-Correlation-ID"
