package api

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// User is the public view of an account
type User struct {
	Email    *string `json:"email,omitempty"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	ID       int64   `json:"id"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	User    User `json:"user"`
	Success bool `json:"success"`
}

// MeResponse describes the signed-in user
type MeResponse struct {
	User User `json:"user"`
}

// UsersResponse lists accounts for admins
type UsersResponse struct {
	Users []User `json:"users"`
}

// SuccessResponse acknowledges an action without a payload
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the body of every JSON error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
