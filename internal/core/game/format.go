package game

import (
	"fmt"
	"time"
)

// FormatSeconds renders d as seconds with two decimals.
func FormatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", d.Seconds())
}

func ClearMessage(seconds string) string {
	return "Clear! Time: " + seconds + " s"
}

func CounterMessage(remaining int) string {
	return fmt.Sprintf("Targets remaining: %d", remaining)
}
