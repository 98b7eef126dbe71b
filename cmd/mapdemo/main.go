// Command mapdemo drives the map synchronizer against a running API and prints
// the resulting map state as text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"geosearch-api/internal/client"
	"geosearch-api/internal/logger"
	"geosearch-api/internal/mapsync"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

func main() {
	apiURL := flag.String("api", "http://localhost:3000", "Base URL of the search API")
	lat := flag.String("lat", "", "Latitude to search around")
	lon := flag.String("lon", "", "Longitude to search around")
	radius := flag.String("radius", "5", "Search radius in kilometres")
	selectID := flag.String("select", "", "Restaurant id to select after the search")
	here := flag.String("here", "", "Simulated device position as lat,lon; searches there when -lat/-lon are empty")
	flag.Parse()

	if err := logger.Setup("warn", "console"); err != nil {
		log.Fatal().Err(err).Msg("cannot set up logger")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	surface := mapsync.NewHeadless()
	cfg := mapsync.Config{
		Surface:  surface,
		List:     surface,
		Notifier: surface,
		Form:     surface,
		Client:   client.New(*apiURL),
	}
	if *here != "" {
		pos, err := parsePosition(*here)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -here")
		}
		cfg.Locator = mapsync.FixedLocator{Position: &pos}
	}
	synchronizer := mapsync.New(cfg)

	if *here != "" {
		if _, err := synchronizer.UseCurrentLocation(ctx); err != nil {
			exit(surface, err)
		}
		if *lat == "" && *lon == "" {
			*lat, *lon = surface.Inputs()
		}
	}

	if _, err := synchronizer.RunSearch(ctx, parseInput(*lat), parseInput(*lon), parseInput(*radius)); err != nil {
		exit(surface, err)
	}

	if *selectID != "" && !synchronizer.SelectResult(*selectID) {
		fmt.Fprintf(os.Stderr, "no marker with id %q\n", *selectID)
	}

	if _, err := surface.WriteTo(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("cannot write map state")
	}
}

// parseInput reads a form value; anything that is not a number becomes NaN.
func parseInput(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parsePosition(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, errors.New("expected lat,lon")
	}
	lat, lon := parseInput(parts[0]), parseInput(parts[1])
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return orb.Point{}, errors.New("expected numeric lat,lon")
	}
	return orb.Point{lon, lat}, nil
}

func exit(surface *mapsync.Headless, err error) {
	for _, alert := range surface.Alerts() {
		fmt.Fprintln(os.Stderr, alert)
	}
	log.Error().Err(err).Msg("map update failed")
	os.Exit(1)
}
