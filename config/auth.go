package config

import (
	"time"

	"github.com/spf13/viper"
)

// Auth auth config struct
type Auth struct {
	JWT       *JWT
	SeedAdmin *SeedAdmin
}

// JWT jwt config struct
type JWT struct {
	Secret string
	Expire time.Duration
}

// SeedAdmin describes the administrator provisioned at startup.
// Without a password the email is only reserved: the first registration
// using it receives the admin role.
type SeedAdmin struct {
	Email    string
	Name     string
	Password string
}

func getAuth(v *viper.Viper) *Auth {
	return &Auth{
		JWT: &JWT{
			Secret: v.GetString("auth.jwt.secret"),
			Expire: v.GetDuration("auth.jwt.expire"),
		},
		SeedAdmin: &SeedAdmin{
			Email:    v.GetString("auth.seed_admin.email"),
			Name:     v.GetString("auth.seed_admin.name"),
			Password: v.GetString("auth.seed_admin.password"),
		},
	}
}
