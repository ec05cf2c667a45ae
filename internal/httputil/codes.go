package httputil

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeMissingFields      = "MISSING_FIELDS"
	CodePasswordMismatch   = "PASSWORD_MISMATCH"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeEmailRegistered    = "EMAIL_REGISTERED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidOTP         = "INVALID_OTP"
	CodeInternalError      = "INTERNAL_ERROR"
)
