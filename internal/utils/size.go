package utils

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const sizeStep = 1024

var (
	sizeUnits    = []string{"b", "kb", "mb", "gb", "tb", "pb"}
	countPrinter = message.NewPrinter(language.English)
)

// FormatFileSize renders a byte count the way digest notes and summaries print it:
// lower-case units, one decimal below 10 ("1.5kb", "10mb", "512b").
func FormatFileSize(bytes int64) string {
	if bytes < sizeStep {
		if bytes < 0 {
			bytes = 0
		}
		return strconv.FormatInt(bytes, 10) + sizeUnits[0]
	}
	scaled := float64(bytes)
	unit := 0
	for scaled >= sizeStep && unit < len(sizeUnits)-1 {
		scaled /= sizeStep
		unit++
	}
	precision := 0
	if scaled < 10 {
		precision = 1
	}
	rendered := strconv.FormatFloat(scaled, 'f', precision, 64)
	if precision == 1 && rendered[len(rendered)-2:] == ".0" {
		rendered = rendered[:len(rendered)-2]
	}
	return rendered + sizeUnits[unit]
}

// FormatCount renders an integer with English digit grouping, e.g. 12,345.
func FormatCount(value int) string {
	return countPrinter.Sprintf("%d", value)
}
