package utils

import (
	"fmt"
	"strings"
	"time"
)

// SanitizeToken collapses a free-text value into a single filesystem-safe
// token: trimmed, uppercased, runs of spaces replaced by underscores.
func SanitizeToken(s string) string {
	s = strings.Join(strings.Fields(strings.TrimSpace(s)), "_")
	return strings.ToUpper(s)
}

// UploadFileName builds the canonical stored name for an uploaded import
// file: CLIENTCODE_OPERATION_PERIOD_TIMESTAMP.ext.
func UploadFileName(clientCode, operation, period string, ts time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		SanitizeToken(clientCode),
		SanitizeToken(operation),
		SanitizeToken(period),
		ts.Format("20060102150405"),
		ext,
	)
}
