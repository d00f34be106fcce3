// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

// trafilytics-status queries a running sensor's control socket and
// prints its operational counters.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/trafilytics/trafilytics/lib/ctlsock"
	"github.com/trafilytics/trafilytics/lib/process"
	"github.com/trafilytics/trafilytics/lib/report"
	"github.com/trafilytics/trafilytics/lib/version"
)

// statusResponse mirrors the sensor's "status" action wire format.
type statusResponse struct {
	Version       string        `cbor:"version"`
	UptimeSeconds float64       `cbor:"uptime_seconds"`
	Status        report.Status `cbor:"status"`
}

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var socketPath string

	flagSet := pflag.NewFlagSet("trafilytics-status", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", "/run/trafilytics/sensor.sock",
		"path to the sensor's control socket")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("trafilytics-status")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var response statusResponse
	if err := ctlsock.NewClient(socketPath).Call(ctx, "status", nil, &response); err != nil {
		return err
	}

	fmt.Print(render(&response))
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(18)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

func render(response *statusResponse) string {
	status := response.Status
	uptime := time.Duration(response.UptimeSeconds * float64(time.Second)).Round(time.Second)

	out := headerStyle.Render(status.CombinedID) +
		fmt.Sprintf("  v%s  up %s\n\n", response.Version, uptime)

	out += row("date", status.Date)
	out += row("daily impressions", fmt.Sprint(status.DailyImpressions))
	out += row("unique total", fmt.Sprint(status.UniqueTotal))
	out += "\n"

	out += row("cycle", fmt.Sprintf("scan %d, detections %d, unique %d, repeated %d",
		status.ScansThisCycle, status.CycleDetections, status.CycleUnique, status.CycleRepeated))
	out += row("window", fmt.Sprintf("generation %d (%d current, %d previous)",
		status.Generation, status.WindowCurrent, status.WindowPrevious))
	out += "\n"

	out += row("scans", fmt.Sprint(status.Scans))
	out += row("reports", fmt.Sprint(status.Reports))
	out += row("scan errors", counted(status.ScanErrors))
	out += row("publish errors", counted(status.PublishErrors))
	out += row("bytes published", fmt.Sprint(status.BytesPublished))
	out += "\n"

	location := fmt.Sprintf("%s, %s", status.Lat, status.Long)
	if status.HaveFix {
		out += row("location", location+" "+okStyle.Render("(fix)"))
	} else {
		out += row("location", location+" "+warnStyle.Render("(no fix)"))
	}
	if status.PublishingDisabled {
		out += row("publishing", warnStyle.Render("disabled (auth rejected)"))
	} else {
		out += row("publishing", okStyle.Render("enabled"))
	}
	return out
}

func row(label, value string) string {
	return labelStyle.Render(label) + " " + value + "\n"
}

// counted renders an error tally, highlighted when non-zero.
func counted(n uint32) string {
	if n == 0 {
		return "0"
	}
	return warnStyle.Render(fmt.Sprint(n))
}
