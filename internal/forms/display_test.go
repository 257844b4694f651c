package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15/01/2024", FormatDate("2024-01-15"))
	assert.Equal(t, "01/03/2024", FormatDate("2024-03-01T10:00:00.000Z"))
	assert.Equal(t, "mañana", FormatDate("mañana"))
	assert.Equal(t, "", FormatDate(""))
}

func TestFormatTime12h(t *testing.T) {
	assert.Equal(t, "2:05 PM", FormatTime12h("14:05"))
	assert.Equal(t, "9:30 AM", FormatTime12h("09:30"))
	assert.Equal(t, "12:00 AM", FormatTime12h("00:00"))
	assert.Equal(t, "tarde", FormatTime12h("tarde"))
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "09:30", NormalizeClock("9:30"))
	assert.Equal(t, "09:30", NormalizeClock(" 9:30 "))
	assert.Equal(t, "14:05", NormalizeClock("14:05"))
	assert.Equal(t, "tarde", NormalizeClock("tarde"))
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "10/02/2025 – 02:30 PM", FormatDateTime("2025-02-10T14:30:00"))
	assert.Equal(t, "", FormatDateTime(""))
}
