package jwt

// Config holds JWT configuration
type Config struct {
	SecretKey string
}

// Claims represents the JWT claims structure
type Claims struct {
	Sub  string `json:"sub"`          // Subject id
	Kind string `json:"subject_kind"` // Subject kind (creator or admin)
	Exp  int64  `json:"exp"`          // Expiration time
}
