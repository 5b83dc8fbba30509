package config

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "taskhub")
	v.SetDefault("run_mode", "release")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allow_origins", []string{"*"})

	v.SetDefault("logger.level", 4)
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")

	v.SetDefault("data.driver", DriverMongoDB)
	v.SetDefault("data.mongodb.database", "taskhub")
	v.SetDefault("data.mongodb.transactions", false)
	v.SetDefault("data.redis.dial_timeout", 5*time.Second)

	v.SetDefault("auth.jwt.expire", 168*time.Hour)
	v.SetDefault("auth.seed_admin.name", "Administrator")

	v.SetDefault("observes.tracer.sampling_rate", 1.0)
	v.SetDefault("observes.tracer.batch_timeout", 5*time.Second)
	v.SetDefault("observes.tracer.export_timeout", 30*time.Second)

	v.SetDefault("storage.provider", "filesystem")
	v.SetDefault("storage.bucket", "./uploads")
	v.SetDefault("storage.public_prefix", "/uploads")

	v.SetDefault("attachment.max_files", 3)
	v.SetDefault("attachment.max_size", 10<<20)
}
