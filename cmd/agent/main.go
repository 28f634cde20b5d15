// Command agent shares a device's position with the carpool service.
// It watches the (simulated) device feed and posts each sample to the
// location ingest endpoint until stopped or until the server rejects a
// write.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carpool/internal/geolocation"
)

func main() {
	var (
		endpoint = flag.String("endpoint", "http://localhost:8080", "carpool service base URL")
		actorID  = flag.String("actor", "", "actor id to share as (required)")
		tripID   = flag.String("trip", "", "trip id to attach samples to")
		fromLat  = flag.Float64("from-lat", 52.5200, "route start latitude")
		fromLng  = flag.Float64("from-lng", 13.4050, "route start longitude")
		toLat    = flag.Float64("to-lat", 53.5511, "route end latitude")
		toLng    = flag.Float64("to-lng", 9.9937, "route end longitude")
		steps    = flag.Int("steps", 50, "number of simulated samples")
		interval = flag.Duration("interval", 2*time.Second, "sampling cadence")
	)
	flag.Parse()

	if *actorID == "" {
		log.Fatal("-actor is required")
	}

	// Secure-context precondition: sharing must not start over an
	// insecure transport.
	if err := geolocation.CheckEndpoint(*endpoint); err != nil {
		log.Fatalf("refusing to share location: %v", err)
	}

	provider := &geolocation.SimulatedProvider{
		StartLat: *fromLat,
		StartLng: *fromLng,
		EndLat:   *toLat,
		EndLng:   *toLng,
		Steps:    *steps,
		Interval: *interval,
	}

	sink := &httpSink{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: *endpoint,
	}

	opts := geolocation.Options{
		HighAccuracy: true,
		Timeout:      5 * time.Second,
		MaxSampleAge: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sharer := geolocation.NewSharer(provider, sink, opts)
	watch, errc := sharer.Share(ctx, *actorID, *tripID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("stopping location sharing")
		watch.Stop()
		<-errc
	case err := <-errc:
		if err != nil {
			log.Fatalf("location sharing stopped: %v", err)
		}
		log.Println("route finished")
	}
}

// httpSink posts samples to the service's location ingest endpoint.
type httpSink struct {
	client   *http.Client
	endpoint string
}

type sampleBody struct {
	TripID     string    `json:"trip_id,omitempty"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    *float64  `json:"heading,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (s *httpSink) Submit(ctx context.Context, sample geolocation.Sample) error {
	body, err := json.Marshal(sampleBody{
		TripID:     sample.TripID,
		Lat:        sample.Position.Lat,
		Lng:        sample.Position.Lng,
		Heading:    sample.Position.Heading,
		Speed:      sample.Position.Speed,
		RecordedAt: sample.Position.Timestamp,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/locations", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", sample.ActorID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("location ingest rejected sample: status %d", resp.StatusCode)
	}

	return nil
}
