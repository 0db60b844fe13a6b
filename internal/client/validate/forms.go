package validate

import (
	"strings"

	"github.com/guia-app/guia/internal/client/models"
)

// LoginForm is the sign-in form. Identifier is an email or a username.
type LoginForm struct {
	Identifier string `json:"identifier" validate:"required,identifier"`
	Password   string `json:"password" validate:"required"`
}

// Login trims the identifier and validates the pair.
func Login(identifier, password string) (LoginForm, Errors) {
	f := LoginForm{Identifier: strings.TrimSpace(identifier), Password: password}
	return f, check(f)
}

// Request converts the form into the API body.
func (f LoginForm) Request() models.LoginRequest {
	return models.LoginRequest{Identifier: f.Identifier, Password: f.Password}
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	Username        string             `json:"username" validate:"required,min=3,max=50,username"`
	Email           string             `json:"email" validate:"required,emailshape"`
	Password        string             `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string             `json:"confirm_password" validate:"required,eqfield=Password"`
	FirstName       string             `json:"first_name" validate:"required,min=2,max=50"`
	LastName        string             `json:"last_name" validate:"required,min=2,max=50"`
	Type            models.AccountType `json:"user_type" validate:"required,accounttype"`
	CompanyName     string             `json:"company_name" validate:"omitempty,min=2,max=100"`
}

// Register trims the text fields in place and validates the form.
func Register(f *RegisterForm) Errors {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	if f.Type == "" {
		f.Type = models.AccountPersonal
	}
	return check(*f)
}

// Request converts the form into the API body. The company name is only
// sent for company accounts.
func (f RegisterForm) Request() models.RegisterRequest {
	req := models.RegisterRequest{
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Type:      f.Type,
	}
	if f.Type == models.AccountCompany {
		req.CompanyName = f.CompanyName
	}
	return req
}

// Profile validates the fields set on a profile update.
func Profile(u models.ProfileUpdate) Errors {
	return check(u)
}

type passwordForm struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8,max=100"`
	Confirm string `json:"confirm_password" validate:"required,eqfield=New"`
}

// Password validates a password change.
func Password(c models.PasswordChange) Errors {
	return check(passwordForm{Current: c.Current, New: c.New, Confirm: c.Confirm})
}

type postForm struct {
	Content string `json:"content" validate:"max=2000"`
}

// Post validates new post content. Empty content is allowed only when media
// is attached.
func Post(content string, mediaCount int) Errors {
	if strings.TrimSpace(content) == "" && mediaCount == 0 {
		return Errors{"content": "type something or add media"}
	}
	return check(postForm{Content: content})
}

// Itinerary validates a new itinerary.
func Itinerary(it models.NewItinerary) Errors {
	return check(it)
}

type ratingForm struct {
	Rating int `json:"rating" validate:"min=1,max=5"`
}

// Rating validates a star rating.
func Rating(stars int) Errors {
	return check(ratingForm{Rating: stars})
}
