package forms

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

var (
	nameWordRe  = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+$`)
	emailRe     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.(com|net|org|edu|gov|mil|info|co|es|hn)$`)
	looseEmail  = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneRe     = regexp.MustCompile(`^\+504\s\d{4}-\d{4}$`)
	nonDigitRe  = regexp.MustCompile(`\D`)
	nonAmountRe = regexp.MustCompile(`[^\d.]`)
	leadFloatRe = regexp.MustCompile(`^\d*(\.\d*)?`)
)

const phonePrefix = "+504 "

// ValidName wants at least two words, each a capital letter followed by
// lowercase letters. Spanish accented vowels and Ñ count as letters.
func ValidName(s string) bool {
	words := strings.Fields(strings.TrimSpace(s))
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !nameWordRe.MatchString(w) {
			return false
		}
	}
	return true
}

// ValidEmail accepts local@domain.tld for a fixed set of top-level domains.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.ToLower(s))
}

// ValidPhone accepts exactly "+504 NNNN-NNNN".
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// FormatPhone is the as-you-type phone transform: keep digits, drop a leading
// country code, cap at 8 digits and hyphenate after the fourth.
func FormatPhone(raw string) string {
	d := nonDigitRe.ReplaceAllString(raw, "")
	d = strings.TrimPrefix(d, "504")
	if len(d) > 8 {
		d = d[:8]
	}
	if len(d) >= 4 {
		return phonePrefix + d[:4] + "-" + d[4:]
	}
	return phonePrefix + d
}

// ValidPassword wants 8+ characters and an uppercase letter.
func ValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

var errNoAmount = errors.New("no amount")

// ParseAmount reads the leading number after dropping everything that is not
// a digit or a dot, so "L 1,500.50" is 1500.5.
func ParseAmount(s string) (float64, error) {
	n := leadFloatRe.FindString(nonAmountRe.ReplaceAllString(s, ""))
	if n == "" || n == "." {
		return 0, errNoAmount
	}
	return strconv.ParseFloat(strings.TrimSuffix(n, "."), 64)
}

// FormatAmount is the on-blur amount transform. Input without a number,
// including empty input, is returned untouched.
func FormatAmount(s string) string {
	v, err := ParseAmount(s)
	if err != nil {
		return s
	}
	return FormatCurrency(v)
}

// FormatCurrency renders lempiras with comma thousands and two decimals.
func FormatCurrency(v float64) string {
	return "L " + humanize.FormatFloat("#,###.##", v)
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return err == nil
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", strings.TrimSpace(s))
	return err == nil
}

func blank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
