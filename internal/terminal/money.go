package terminal

import (
	"math"
	"strconv"
	"strings"
)

// FormatIDR форматирует сумму в минимальных единицах как "Rp12.500".
// Разделитель тысяч — точка.
func FormatIDR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		if neg {
			return "-Rp" + s
		}
		return "Rp" + s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 3)
	if neg {
		b.WriteString("-Rp")
	} else {
		b.WriteString("Rp")
	}

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}

	return b.String()
}

// FormatIDRFloat округляет производную сумму до целой минимальной единицы
// и форматирует её. Округление происходит только здесь, на отображении.
func FormatIDRFloat(v float64) string {
	return FormatIDR(int64(math.Round(v)))
}
