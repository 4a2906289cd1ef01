package errors

// Generic
const (
	ErrInternalServer = "ERR_INTERNAL_SERVER"
	ErrInvalidParam   = "ERR_INVALID_PARAM"
)

// Post and upload
const (
	ErrInvalidPostID = "ERR_INVALID_POST_ID"
	ErrPostNotFound  = "ERR_POST_NOT_FOUND"
	ErrPostDeleted   = "MSG_POST_DELETED"
	ErrFileRequired  = "ERR_FILE_REQUIRED"
	ErrFileEmpty     = "ERR_FILE_EMPTY"
	ErrUploadFailed  = "ERR_UPLOAD_FAILED"
	ErrFeedFailed    = "ERR_FEED_FAILED"
	ErrDeleteFailed  = "ERR_DELETE_FAILED"
)

// Authentication. These codes are returned verbatim as the response detail.
const (
	ErrUnauthorized              = "Unauthorized"
	ErrForbidden                 = "Forbidden"
	ErrLoginBadCredentials       = "LOGIN_BAD_CREDENTIALS"
	ErrRegisterUserAlreadyExists = "REGISTER_USER_ALREADY_EXISTS"
	ErrRegisterInvalidPassword   = "REGISTER_INVALID_PASSWORD"
	ErrResetPasswordBadToken     = "RESET_PASSWORD_BAD_TOKEN"
	ErrResetPasswordInvalidPass  = "RESET_PASSWORD_INVALID_PASSWORD"
	ErrVerifyUserBadToken        = "VERIFY_USER_BAD_TOKEN"
	ErrVerifyUserAlreadyVerified = "VERIFY_USER_ALREADY_VERIFIED"
	ErrUpdateUserEmailExists     = "UPDATE_USER_EMAIL_ALREADY_EXISTS"
	ErrUpdateUserInvalidPassword = "UPDATE_USER_INVALID_PASSWORD"
	ErrUserNotFound              = "USER_NOT_FOUND"
	ErrEmptyID                   = "ERR_EMPTY_ID"
)
