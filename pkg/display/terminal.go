package display

import (
	"fmt"
	"sort"
	"time"

	"github.com/sandboxkit/sentinel/pkg/telemetry"
)

// ANSI color constants
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

const maxActivity = 10 // Maximum number of activity lines to display

type Activity struct {
	Type      string
	Message   string
	Timestamp time.Time
}

// Terminal renders received sentinel events. Not safe for concurrent use;
// feed it from a single loop.
type Terminal struct {
	counts     map[string]uint64
	activities []Activity
	total      uint64
}

func NewTerminal() *Terminal {
	return &Terminal{
		counts:     make(map[string]uint64),
		activities: make([]Activity, 0, maxActivity),
	}
}

// AddEvent records one decoded event for display.
func (t *Terminal) AddEvent(rec telemetry.Record) {
	t.total++
	t.counts[rec.Type]++

	t.activities = append([]Activity{{
		Type:      rec.Type,
		Message:   FormatRecord(rec),
		Timestamp: time.Now(),
	}}, t.activities...)
	if len(t.activities) > maxActivity {
		t.activities = t.activities[:maxActivity]
	}
}

func (t *Terminal) Display() {
	clear := "\033[H\033[2J"
	fmt.Print(clear)

	// Print header with current time
	now := time.Now().Format("15:04:05")
	fmt.Printf("=== %ssentinel-listen%s - %s%s%s ===\n\n",
		colorCyan, colorReset, colorYellow, now, colorReset)

	fmt.Printf("%sEvent Counters%s (%d total)\n", colorPurple, colorReset, t.total)
	if len(t.counts) == 0 {
		fmt.Printf("└─ %sNo events received%s\n\n", colorYellow, colorReset)
	} else {
		types := make([]string, 0, len(t.counts))
		for typ := range t.counts {
			types = append(types, typ)
		}
		sort.Strings(types)
		for i, typ := range types {
			prefix := "├─"
			if i == len(types)-1 {
				prefix = "└─"
			}
			fmt.Printf("%s %s%-10s%s %d\n", prefix, typeColor(typ), typ, colorReset, t.counts[typ])
		}
		fmt.Println()
	}

	// Print recent activity as a continuous log
	fmt.Printf("%sActivity Log%s\n", colorBlue, colorReset)
	if len(t.activities) == 0 {
		fmt.Printf("└─ %sNo recent activity%s\n", colorYellow, colorReset)
	} else {
		for i, act := range t.activities {
			prefix := "├─"
			if i == len(t.activities)-1 {
				prefix = "└─"
			}

			age := time.Since(act.Timestamp).Round(time.Second)
			fmt.Printf("%s %s[%s]%s [%s ago] %s\n",
				prefix,
				typeColor(act.Type), act.Type, colorReset,
				age, act.Message)
		}
	}

	// Print footer
	fmt.Printf("\n%s=== Press Ctrl+C to exit ===%s\n",
		colorYellow, colorReset)
}

// FormatRecord renders one event line for the activity log.
func FormatRecord(rec telemetry.Record) string {
	if rec.Cmd == "" {
		return fmt.Sprintf("%s.%s", rec.Module, rec.Function)
	}
	return fmt.Sprintf("%s.%s %s", rec.Module, rec.Function, rec.Cmd)
}

func typeColor(typ string) string {
	switch typ {
	case "exec", "privilege":
		return colorRed
	case "network":
		return colorCyan
	case "file":
		return colorYellow
	case "injection":
		return colorPurple
	case "process":
		return colorGreen
	default:
		return colorBlue
	}
}
