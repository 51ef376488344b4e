// Command calibrate derives a wind-vane direction table from the vane's
// resistor values and writes it as JSON for WIND_CALIBRATION_FILE.
//
// Usage:
//
//	go run ./cmd/calibrate \
//	  -pullup 10000 \
//	  -resistances 33000,6570,8200,891,1000,688,2200,1410,3900,3140,16000,14120,120000,42120,64900,21880 \
//	  -out wind_calibration.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/wx-station/internal/sensor"
)

// Ohms per compass point, N through NNW, for the common reed-switch vane.
const defaultResistances = "33000,6570,8200,891,1000,688,2200,1410,3900,3140,16000,14120,120000,42120,64900,21880"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	pullup := flag.Float64("pullup", 10000, "divider pull-up resistance in ohms")
	resistances := flag.String("resistances", defaultResistances, "comma-separated vane resistances in ohms, N through NNW")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	divider := sensor.VaneDivider{PullUpOhms: *pullup}
	if err := parseResistances(*resistances, &divider.Resistance); err != nil {
		flag.Usage()
		return err
	}

	table, err := sensor.DeriveDirectionTable(divider)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(table.Bands(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}
	data = append(data, '\n')

	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d bands to %s", len(table.Bands()), *out)
	return nil
}

func parseResistances(s string, dst *[sensor.DirectionCount]float64) error {
	fields := strings.Split(s, ",")
	if len(fields) != sensor.DirectionCount {
		return fmt.Errorf("want %d resistances, got %d", sensor.DirectionCount, len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return fmt.Errorf("resistance %d: %w", i, err)
		}
		dst[i] = v
	}
	return nil
}
