package stockApiModel

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserRecord struct {
	ID          string `json:"_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdateUserRequest is sparse: the service stores the username as email.
type UpdateUserRequest struct {
	Name    *string `json:"name,omitempty"`
	Surname *string `json:"surname,omitempty"`
	Email   *string `json:"email,omitempty"`
}

type UpdateUserResponse struct {
	Data        UserRecord `json:"data"`
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
}

// AnalysisBody is the object inside the JSON-encoded string returned by POST /stock-data/.
type AnalysisBody struct {
	Plot *string  `json:"plot"`
	Var  *float64 `json:"var"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
