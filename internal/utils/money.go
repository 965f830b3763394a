package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatGross renders an integer rupiah amount the way the gateway reports
// gross_amount ("150000.00"). The webhook signature is computed over this form.
func FormatGross(amount int64) string {
	return fmt.Sprintf("%d.00", amount)
}

// FormatRupiah renders integer amount with thousand separators.
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sRp%s", sign, formatThousand(amount))
}

// ParseGross parses gateway gross_amount ("150000.00") back to integer rupiah.
func ParseGross(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid gross amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte('.')
		}
		out.WriteRune(c)
	}
	return out.String()
}
