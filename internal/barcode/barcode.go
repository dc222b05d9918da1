// Package barcode validates retail barcodes before they are attached to
// products. Supported formats are EAN-8, UPC-A, EAN-13 and GTIN-14;
// EAN-13 additionally gets a weighted checksum verification.
package barcode

import "strings"

// Normalize strips every non-digit character from the scanned code.
func Normalize(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format reports the barcode format for a normalized code, or "" when
// the length matches none of the supported formats.
func Format(code string) string {
	switch len(code) {
	case 8:
		return "EAN-8"
	case 12:
		return "UPC-A"
	case 13:
		return "EAN-13"
	case 14:
		return "GTIN-14"
	}
	return ""
}

// Valid reports whether the code is a plausible retail barcode. The
// code is normalized first; EAN-13 codes must also pass the checksum.
func Valid(code string) bool {
	clean := Normalize(code)
	if Format(clean) == "" {
		return false
	}
	if len(clean) == 13 {
		return checkDigitEAN13(clean) == int(clean[12]-'0')
	}
	return true
}

// checkDigitEAN13 computes the expected check digit over the first 12
// digits using the alternating 1/3 weighting.
func checkDigitEAN13(clean string) int {
	sum := 0
	for i := 0; i < 12; i++ {
		digit := int(clean[i] - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return (10 - sum%10) % 10
}
