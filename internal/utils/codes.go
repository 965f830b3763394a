package utils

import (
	"math/rand"
	"strings"
	"time"
)

const codeSuffixChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode builds a human-readable code: prefix + yymmddhhmmss digits +
// 4 random characters. Collision probability is accepted as negligible;
// uniqueness is not guaranteed by construction.
func GenerateCode(prefix string, now time.Time) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(strings.TrimSpace(prefix)))
	b.WriteString(now.UTC().Format("060102150405"))
	for i := 0; i < 4; i++ {
		b.WriteByte(codeSuffixChars[rand.Intn(len(codeSuffixChars))])
	}
	return b.String()
}
