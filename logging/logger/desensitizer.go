package logger

import (
	"strings"

	"github.com/satvikmishra44/taskhub/logging/logger/config"
	"github.com/sirupsen/logrus"
)

// Desensitizer masks the values of sensitive log fields
type Desensitizer struct {
	fields []string
	mask   string
}

// NewDesensitizer creates a new desensitizer instance
func NewDesensitizer(cfg *config.Desensitization) *Desensitizer {
	fields := make([]string, 0, len(cfg.SensitiveFields))
	for _, f := range cfg.SensitiveFields {
		fields = append(fields, strings.ToLower(f))
	}
	maskChar := cfg.MaskChar
	if maskChar == "" {
		maskChar = "*"
	}
	n := cfg.MaskLength
	if n <= 0 {
		n = 6
	}
	return &Desensitizer{fields: fields, mask: strings.Repeat(maskChar, n)}
}

// isSensitiveField checks if field name contains sensitive keywords
func (d *Desensitizer) isSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, f := range d.fields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// DesensitizeFields returns a copy of fields with sensitive values masked
func (d *Desensitizer) DesensitizeFields(fields logrus.Fields) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if d.isSensitiveField(k) {
			out[k] = d.mask
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = map[string]any(d.DesensitizeFields(nested))
			continue
		}
		out[k] = v
	}
	return out
}

// desensitizeHook applies a Desensitizer to every entry
type desensitizeHook struct {
	d *Desensitizer
}

func (h *desensitizeHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *desensitizeHook) Fire(entry *logrus.Entry) error {
	entry.Data = h.d.DesensitizeFields(entry.Data)
	return nil
}
