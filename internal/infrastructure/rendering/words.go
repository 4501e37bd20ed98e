package rendering

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Spanish cardinal fragments for the legal amount line on receipts.
// Uppercase and unaccented, matching how payment offices print them.
var (
	wordsUnits = []string{"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}

	wordsTeens = []string{"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
		"DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE"}

	wordsTwenties = []string{"VEINTE", "VEINTIUNO", "VEINTIDOS", "VEINTITRES", "VEINTICUATRO",
		"VEINTICINCO", "VEINTISEIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE"}

	wordsTens = []string{"", "", "", "TREINTA", "CUARENTA", "CINCUENTA",
		"SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}

	wordsHundreds = []string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS",
		"QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}
)

// AmountInWords renders an MXN amount as the written legal line of a
// receipt, e.g. 1501.05 -> "MIL QUINIENTOS UNO PESOS 05/100 M.N.".
// The amount is truncated to centavos; the sign is ignored because
// printable amounts are never negative.
func AmountInWords(v decimal.Decimal) string {
	v = v.Abs().Truncate(2)

	pesos := v.IntPart()
	centavos := v.Sub(decimal.NewFromInt(pesos)).Mul(decimal.NewFromInt(100)).IntPart()

	noun := "PESOS"
	if pesos == 1 {
		noun = "PESO"
	}

	return fmt.Sprintf("%s %s %02d/100 M.N.", integerInWords(pesos), noun, centavos)
}

// integerInWords spells a non-negative integer up to the millions.
func integerInWords(n int64) string {
	if n == 0 {
		return "CERO"
	}

	var parts []string

	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "UN MILLON")
		} else {
			parts = append(parts, apocopate(groupInWords(millions))+" MILLONES")
		}
		n %= 1_000_000
	}

	if thousands := n / 1000; thousands > 0 {
		if thousands == 1 {
			parts = append(parts, "MIL")
		} else {
			parts = append(parts, apocopate(groupInWords(thousands))+" MIL")
		}
		n %= 1000
	}

	if n > 0 {
		parts = append(parts, groupInWords(n))
	}

	return strings.Join(parts, " ")
}

// groupInWords spells a number in the 1..999 range.
func groupInWords(n int64) string {
	var parts []string

	if h := n / 100; h > 0 {
		if n == 100 {
			return "CIEN"
		}
		parts = append(parts, wordsHundreds[h])
		n %= 100
	}

	switch {
	case n == 0:
	case n < 10:
		parts = append(parts, wordsUnits[n])
	case n < 20:
		parts = append(parts, wordsTeens[n-10])
	case n < 30:
		parts = append(parts, wordsTwenties[n-20])
	default:
		tens := wordsTens[n/10]
		if u := n % 10; u > 0 {
			parts = append(parts, tens+" Y "+wordsUnits[u])
		} else {
			parts = append(parts, tens)
		}
	}

	return strings.Join(parts, " ")
}

// apocopate shortens a trailing "UNO" before MIL and MILLONES, as in
// "VEINTIUN MIL" rather than "VEINTIUNO MIL".
func apocopate(s string) string {
	if strings.HasSuffix(s, "UNO") {
		return strings.TrimSuffix(s, "O")
	}
	return s
}
