package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Server http server config struct
type Server struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORS            *CORS
}

// CORS cross origin settings
type CORS struct {
	AllowOrigins []string
}

// Addr returns host:port
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		Host:            v.GetString("server.host"),
		Port:            v.GetInt("server.port"),
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		CORS: &CORS{
			AllowOrigins: v.GetStringSlice("server.cors.allow_origins"),
		},
	}
}

// Attachment upload limits
type Attachment struct {
	MaxFiles int
	MaxSize  int64
}

func getAttachmentConfig(v *viper.Viper) *Attachment {
	return &Attachment{
		MaxFiles: v.GetInt("attachment.max_files"),
		MaxSize:  v.GetInt64("attachment.max_size"),
	}
}
