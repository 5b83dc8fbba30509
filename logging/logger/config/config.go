package config

import (
	"github.com/spf13/viper"
)

// Config configuration struct
type Config struct {
	Level           int              `json:"level" yaml:"level"`
	Format          string           `json:"format" yaml:"format"`
	Output          string           `json:"output" yaml:"output"`
	OutputFile      string           `json:"output_file" yaml:"output_file"`
	Desensitization *Desensitization `json:"desensitization" yaml:"desensitization"`
}

// Desensitization lists log fields whose values are masked
type Desensitization struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	SensitiveFields []string `json:"sensitive_fields" yaml:"sensitive_fields"`
	MaskChar        string   `json:"mask_char" yaml:"mask_char"`
	MaskLength      int      `json:"mask_length" yaml:"mask_length"`
}

var defaultSensitiveFields = []string{"password", "token", "secret", "authorization"}

// GetConfig returns the logger configuration
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		Level:           v.GetInt("logger.level"),
		Format:          v.GetString("logger.format"),
		Output:          v.GetString("logger.output"),
		OutputFile:      v.GetString("logger.output_file"),
		Desensitization: getDesensitization(v),
	}
}

func getDesensitization(v *viper.Viper) *Desensitization {
	d := &Desensitization{
		Enabled:         true,
		SensitiveFields: defaultSensitiveFields,
		MaskChar:        "*",
		MaskLength:      6,
	}
	if !v.IsSet("logger.desensitization") {
		return d
	}

	if v.IsSet("logger.desensitization.enabled") {
		d.Enabled = v.GetBool("logger.desensitization.enabled")
	}
	if fields := v.GetStringSlice("logger.desensitization.sensitive_fields"); len(fields) > 0 {
		d.SensitiveFields = fields
	}
	if c := v.GetString("logger.desensitization.mask_char"); c != "" {
		d.MaskChar = c
	}
	if n := v.GetInt("logger.desensitization.mask_length"); n > 0 {
		d.MaskLength = n
	}
	return d
}
