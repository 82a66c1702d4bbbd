package models

// TokenResponse is the body of a successful login or phase-2 completion.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// User is only sent by phase 2.
	User *RegisteredUser `json:"user,omitempty"`
}

// RegisteredUser is the short user summary returned by phase 2.
type RegisteredUser struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	ProfileCompleted bool   `json:"profile_completed"`
}

// ProvisionalGrant is the body of a successful phase 1 (account creation).
type ProvisionalGrant struct {
	UserID    int64  `json:"user_id"`
	TempToken string `json:"temp_token"`
	Message   string `json:"message"`
}

// AccountRequest is the phase 1 request body.
type AccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerificationRequest is the email verification request body.
type VerificationRequest struct {
	Token string `json:"token"`
}

// MessageResponse is a plain {"message": ...} body.
type MessageResponse struct {
	Message string `json:"message"`
}
