package models

import "errors"

// Model validation and operation errors
var (
	// General errors
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUserRole    = errors.New("invalid user role")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet complexity requirements")
	ErrProtectedUser      = errors.New("the built-in admin account cannot be deleted")

	// Questionnaire errors
	ErrQuestionnaireNotFound  = errors.New("questionnaire not found")
	ErrInvalidQuestionType    = errors.New("invalid question type")
	ErrDuplicateQuestionID    = errors.New("duplicate question id")
	ErrMissingQuestionOptions = errors.New("choice questions require options")
	ErrTemplateInvalidFormat  = errors.New("invalid template format")

	// Assessment errors
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrInvalidAnswerFormat = errors.New("invalid answer format")

	// Task errors
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskAlreadyOpen = errors.New("an open task already exists for this user and questionnaire")

	// Chat errors
	ErrChatSessionNotFound = errors.New("chat session not found")

	// System log errors
	ErrLogNotFound = errors.New("log entry not found")

	// AI collaborator errors
	ErrAIUnavailable = errors.New("AI service is not configured")
	ErrAIUpstream    = errors.New("AI service request failed")
	ErrAIBadResponse = errors.New("AI service returned an unusable response")
)

// IsNotFoundError returns true if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrQuestionnaireNotFound) ||
		errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrChatSessionNotFound) ||
		errors.Is(err, ErrLogNotFound)
}

// IsValidationError returns true if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidUserRole) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrWeakPassword) ||
		errors.Is(err, ErrInvalidQuestionType) ||
		errors.Is(err, ErrDuplicateQuestionID) ||
		errors.Is(err, ErrMissingQuestionOptions) ||
		errors.Is(err, ErrTemplateInvalidFormat) ||
		errors.Is(err, ErrInvalidAnswerFormat)
}

// IsAuthError returns true if the error is an authentication/authorization error
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsForbiddenError returns true if the caller is authenticated but not allowed.
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrProtectedUser)
}

// IsConflictError returns true if the error is a conflict/duplicate error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrTaskAlreadyOpen)
}

// IsAIError returns true if the failure came from the AI collaborator.
func IsAIError(err error) bool {
	return errors.Is(err, ErrAIUnavailable) ||
		errors.Is(err, ErrAIUpstream) ||
		errors.Is(err, ErrAIBadResponse)
}
