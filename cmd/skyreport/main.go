// skyreport prints the almanac for the configured site and can publish it to
// Home Assistant over MQTT.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spencer-p/skydash/pkg/almanac"
	"github.com/spencer-p/skydash/pkg/config"
	"github.com/spencer-p/skydash/pkg/ephem"
	"github.com/spencer-p/skydash/pkg/logging"
	"github.com/spencer-p/skydash/pkg/publish"
)

func main() {
	at := flag.String("time", "", "instant to report on, RFC3339; defaults to now")
	body := flag.String("body", "", "report one body only")
	output := flag.String("o", "text", "output format, text or json")
	doPublish := flag.Bool("publish", false, "publish to the configured MQTT broker")
	every := flag.Duration("every", 0, "with -publish, keep publishing at this interval")
	flag.Parse()

	env, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logging.Init(env.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logging.Sync()

	t := time.Now()
	if *at != "" {
		if t, err = time.Parse(time.RFC3339, *at); err != nil {
			logging.Fatalf("Bad -time: %v", err)
		}
	}

	home := env.Site()
	obs, err := home.Observer()
	if err != nil {
		logging.Fatalf("Bad home site: %v", err)
	}
	provider, err := ephem.NewProvider(obs, env.VSOP87Dir)
	if err != nil {
		logging.Fatalf("Failed to load ephemeris: %v", err)
	}
	alm := almanac.New(provider, env.Resolution)

	reports := alm.Reports
	if *body != "" {
		b, err := ephem.ParseBody(*body)
		if err != nil {
			logging.Fatalf("Bad -body: %v", err)
		}
		reports = func(t time.Time) ([]*almanac.Report, error) {
			r, err := alm.Report(b, t)
			if err != nil {
				return nil, err
			}
			return []*almanac.Report{r}, nil
		}
	}

	if !*doPublish {
		rs, err := reports(t)
		if err != nil {
			logging.Fatalf("Failed to compute reports: %v", err)
		}
		if err := write(os.Stdout, *output, rs); err != nil {
			logging.Fatalf("Failed to write reports: %v", err)
		}
		return
	}

	broker, ok := env.Broker()
	if !ok {
		logging.Fatalf("-publish needs MQTT_BROKER")
	}
	p, err := publish.Dial(broker)
	if err != nil {
		logging.Fatalf("Failed to connect to MQTT: %v", err)
	}
	defer p.Close()

	if *every <= 0 {
		if !publish.Once(p, home.Name, reports, t) {
			os.Exit(1)
		}
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	publish.Run(ctx, p, home.Name, *every, reports)
}

func write(w io.Writer, format string, reports []*almanac.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "text":
		for _, r := range reports {
			if _, err := fmt.Fprintln(w, summary(r)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func summary(r *almanac.Report) string {
	s := fmt.Sprintf("%-8s %-3s alt %6.1f° az %5.1f°  rises %s  sets %s  highest %s at %.1f°",
		r.Body.Title(), r.State, r.Position.Altitude, r.Position.Azimuth,
		clock(r.Rise), clock(r.Set), r.Highest.Time.Format("15:04"), r.Highest.Altitude)
	switch {
	case r.Moon != nil:
		s += fmt.Sprintf("  %s, %.0f%% lit", r.Moon.Name, r.Moon.Illumination*100)
	case r.Light != nil:
		s += fmt.Sprintf("  %s", *r.Light)
	case r.Perihelion != nil:
		s += fmt.Sprintf("  perihelion %s", r.Perihelion.Time.Format("2006-01-02"))
		if m := r.Position.Magnitude; m != nil {
			s += fmt.Sprintf("  mag %+.1f", *m)
		}
	}
	return s
}

func clock(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Format("15:04")
}
