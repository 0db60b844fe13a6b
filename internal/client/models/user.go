package models

import "strings"

// AccountType is the kind of account a user registered with.
type AccountType string

const (
	// AccountPersonal is sent as "normal" on the wire.
	AccountPersonal AccountType = "normal"
	AccountCompany  AccountType = "company"
	AccountAdmin    AccountType = "admin"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountPersonal, AccountCompany, AccountAdmin:
		return true
	}
	return false
}

// Capability is a permission derived from the account type.
type Capability int

const (
	// CapBasic is held by every authenticated user.
	CapBasic Capability = iota
	// CapCompany is held by company and admin accounts.
	CapCompany
	// CapAdmin is held by admin accounts only.
	CapAdmin
)

func (c Capability) String() string {
	switch c {
	case CapBasic:
		return "basic"
	case CapCompany:
		return "company"
	case CapAdmin:
		return "admin"
	}
	return "unknown"
}

// Capabilities returns the capability set granted to an account type.
// Unknown types get CapBasic only.
func (t AccountType) Capabilities() []Capability {
	switch t {
	case AccountAdmin:
		return []Capability{CapBasic, CapCompany, CapAdmin}
	case AccountCompany:
		return []Capability{CapBasic, CapCompany}
	}
	return []Capability{CapBasic}
}

// Grants reports whether t carries capability c.
func (t AccountType) Grants(c Capability) bool {
	for _, have := range t.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

// User is a guIA account as returned by the API.
type User struct {
	ID               ID          `json:"id"`
	Username         string      `json:"username"`
	Email            string      `json:"email"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	ProfilePicture   string      `json:"profile_picture,omitempty"`
	Bio              string      `json:"bio,omitempty"`
	Location         string      `json:"location,omitempty"`
	Website          string      `json:"website,omitempty"`
	Type             AccountType `json:"user_type"`
	CompanyName      string      `json:"company_name,omitempty"`
	IsVerified       bool        `json:"is_verified,omitempty"`
	FollowersCount   int64       `json:"followers_count"`
	FollowingCount   int64       `json:"following_count"`
	ItinerariesCount int64       `json:"itineraries_count"`
	PostsCount       int64       `json:"posts_count"`
	IsFollowing      bool        `json:"is_following,omitempty"`
}

// DisplayName is the company name for company accounts, otherwise the full
// name, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Type == AccountCompany && u.CompanyName != "" {
		return u.CompanyName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// Clone returns a copy that shares no state with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged by the server and by Apply.
type ProfileUpdate struct {
	FirstName      *string `json:"first_name,omitempty" validate:"omitempty,min=2,max=50"`
	LastName       *string `json:"last_name,omitempty" validate:"omitempty,min=2,max=50"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location       *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Website        *string `json:"website,omitempty" validate:"omitempty,url"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	CompanyName    *string `json:"company_name,omitempty" validate:"omitempty,min=2,max=100"`
}

// Apply copies the set fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Bio, p.Bio)
	set(&u.Location, p.Location)
	set(&u.Website, p.Website)
	set(&u.ProfilePicture, p.ProfilePicture)
	set(&u.CompanyName, p.CompanyName)
}

// Merge overlays the non-empty fields of server onto u. Counters and flags
// are always taken from server since zero is a meaningful value for them.
func (u *User) Merge(server *User) {
	if server == nil {
		return
	}
	keep := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	if !server.ID.IsZero() {
		u.ID = server.ID
	}
	keep(&u.Username, server.Username)
	keep(&u.Email, server.Email)
	keep(&u.FirstName, server.FirstName)
	keep(&u.LastName, server.LastName)
	keep(&u.ProfilePicture, server.ProfilePicture)
	keep(&u.Bio, server.Bio)
	keep(&u.Location, server.Location)
	keep(&u.Website, server.Website)
	keep(&u.CompanyName, server.CompanyName)
	if server.Type != "" {
		u.Type = server.Type
	}
	u.IsVerified = server.IsVerified
	u.FollowersCount = server.FollowersCount
	u.FollowingCount = server.FollowingCount
	u.ItinerariesCount = server.ItinerariesCount
	u.PostsCount = server.PostsCount
}
