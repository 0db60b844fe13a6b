package models

// Credentials is the token pair issued on login, registration and refresh.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no access token is held.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// Complete reports whether both tokens are present.
func (c Credentials) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// LoginRequest is the body of POST auth/login. Identifier is either an
// email or a username.
type LoginRequest struct {
	Identifier string `json:"email_or_username"`
	Password   string `json:"password"`
}

// RegisterRequest is the body of POST auth/register.
type RegisterRequest struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Type        AccountType `json:"user_type"`
	CompanyName string      `json:"company_name,omitempty"`
}

// AuthResponse is the data of a successful login, registration or refresh.
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Credentials extracts the token pair.
func (r AuthResponse) Credentials() Credentials {
	return Credentials{AccessToken: r.Token, RefreshToken: r.RefreshToken}
}

// RefreshRequest is the body of POST auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordChange is the body of PUT users/change-password. Confirm is
// checked locally and never sent.
type PasswordChange struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
	Confirm string `json:"-"`
}
