package rpc

// Empty is used by methods with nothing to send or return.
type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UserRequest struct {
	UserID string `json:"user_id"`
}

// Profile is the remote profile record. UpdatedAt is milliseconds since the
// epoch as set by the writing client.
type Profile struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Bio       string `json:"bio"`
	UpdatedAt int64  `json:"updated_at"`
}

type Descriptor struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Values    []float32 `json:"values"`
	UpdatedAt int64     `json:"updated_at"`
}

type DescriptorList struct {
	Descriptors []Descriptor `json:"descriptors"`
}
