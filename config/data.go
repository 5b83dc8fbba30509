package config

import (
	"time"

	"github.com/spf13/viper"
)

// Data drivers
const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Data represents the data configuration
type Data struct {
	Driver  string
	MongoDB *MongoDB
	Redis   *Redis
}

// MongoDB mongodb config struct
type MongoDB struct {
	URI      string
	Database string
	// Transactions requires a replica set or sharded cluster
	Transactions bool
}

// Redis redis config struct, an empty Addr disables redis
type Redis struct {
	Addr         string
	Username     string
	Password     string
	Db           int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DialTimeout  time.Duration
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		Driver: v.GetString("data.driver"),
		MongoDB: &MongoDB{
			URI:          v.GetString("data.mongodb.uri"),
			Database:     v.GetString("data.mongodb.database"),
			Transactions: v.GetBool("data.mongodb.transactions"),
		},
		Redis: &Redis{
			Addr:         v.GetString("data.redis.addr"),
			Username:     v.GetString("data.redis.username"),
			Password:     v.GetString("data.redis.password"),
			Db:           v.GetInt("data.redis.db"),
			ReadTimeout:  v.GetDuration("data.redis.read_timeout"),
			WriteTimeout: v.GetDuration("data.redis.write_timeout"),
			DialTimeout:  v.GetDuration("data.redis.dial_timeout"),
		},
	}
}
