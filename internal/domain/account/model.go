package account

import "time"

// Account is a person together with the role record it was registered as.
type Account struct {
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password" json:"-"`
	Name         string    `db:"name" json:"name"`
	MobileNumber string    `db:"mobile_number" json:"mobile_number"`
	BirthDate    time.Time `db:"birth_date" json:"birth_date"`
	Address      string    `db:"address" json:"address"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	Position     *string   `db:"position" json:"position,omitempty"`
	LicenseInfo  *string   `db:"license_info" json:"license_info,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}
