// Package console renders simulator output for a human watching the terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	simDomain "github.com/samoilenko/home_sensors/simulator/domain"
	simInfrastructure "github.com/samoilenko/home_sensors/simulator/infrastructure"
)

const ruleWidth = 50

// DeliveryTracker knows when the collector last accepted a payload.
type DeliveryTracker interface {
	LastDelivery() time.Time
}

// Display prints snapshots and send results. It never reads from the terminal.
type Display struct {
	out        io.Writer
	printer    *message.Printer
	deliveries DeliveryTracker

	title *color.Color
	alert *color.Color
	ok    *color.Color
	fail  *color.Color
}

// Show prints the readings of one tick as a block.
func (d *Display) Show(snapshot simDomain.Snapshot) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(d.out, "\n%s\n", rule)
	d.title.Fprintf(d.out, "IoT Device Simulator - Live Data (tick %d, %s)\n",
		snapshot.Tick, snapshot.TakenAt.Format(time.TimeOnly))
	fmt.Fprintln(d.out, rule)

	for _, reading := range snapshot.Readings {
		value := reading.Text
		if value == "" {
			value = d.printer.Sprintf("%.1f%s", reading.Number, reading.Unit)
		}
		line := fmt.Sprintf("%-13s %s", reading.Label+":", value)
		if reading.Alert {
			d.alert.Fprintln(d.out, line)
			continue
		}
		fmt.Fprintln(d.out, line)
	}

	if snapshot.Emergency {
		d.alert.Fprintln(d.out, "!!! SMOKE DETECTED - EMERGENCY ALERT !!!")
	}
}

// ShowResult prints the one-line send indicator.
func (d *Display) ShowResult(result simDomain.SendResult) {
	switch result.Reason {
	case "":
		d.ok.Fprintf(d.out, "✓ Data sent at %s\n", result.SentAt.Format(time.TimeOnly))
	case simDomain.ReasonRejected:
		d.fail.Fprintf(d.out, "✗ Rejected with status %d at %s%s\n",
			result.Code, result.SentAt.Format(time.TimeOnly), d.sinceLastDelivery())
	case simDomain.ReasonUnencodable:
		d.fail.Fprintf(d.out, "✗ Readings not sent: %s%s\n", result.Detail, d.sinceLastDelivery())
	default:
		d.fail.Fprintf(d.out, "✗ Connection failed: %s%s\n", result.Detail, d.sinceLastDelivery())
	}
}

func (d *Display) sinceLastDelivery() string {
	last := d.deliveries.LastDelivery()
	if last.IsZero() {
		return " (nothing delivered yet)"
	}
	return fmt.Sprintf(" (last delivered %s)", humanize.Time(last))
}

// NewDisplay creates a display writing to out. Numbers are formatted for locale.
func NewDisplay(out io.Writer, useColor bool, locale language.Tag, deliveries DeliveryTracker) *Display {
	d := &Display{
		out:        out,
		printer:    message.NewPrinter(locale),
		deliveries: deliveries,
		title:      color.New(color.FgCyan, color.Bold),
		alert:      color.New(color.FgRed, color.Bold),
		ok:         color.New(color.FgGreen),
		fail:       color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{d.title, d.alert, d.ok, d.fail} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return d
}

// UseColor resolves a colour mode against the file the display writes to.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case simInfrastructure.ColorAlways:
		return true
	case simInfrastructure.ColorNever:
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}

// Stdout returns a writer that renders ANSI colours on every platform.
func Stdout() io.Writer {
	return colorable.NewColorableStdout()
}
