package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/Domenick1991/flightdashboard/config"
	"github.com/Domenick1991/flightdashboard/internal/client"
	"github.com/Domenick1991/flightdashboard/internal/domain"
	"github.com/Domenick1991/flightdashboard/internal/logger"
)

// viewer prints the live flight list to the terminal every time it changes.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view := client.NewView()
	view.OnChange(render)

	viewer := client.NewViewer(
		client.NewClient(cfg.Viewer.APIBase, nil),
		client.NewSubscriber(cfg.Viewer.HubURL,
			time.Duration(cfg.Viewer.ReconnectMinSeconds)*time.Second,
			time.Duration(cfg.Viewer.ReconnectMaxSeconds)*time.Second,
			lg.Named("subscriber")),
		view,
		lg,
	)

	if err := viewer.Run(ctx); err != nil && ctx.Err() == nil {
		lg.Fatal("viewer stopped", zap.Error(err))
	}
}

func render(flights []domain.FlightView) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFLIGHT\tFROM\tTO\tDEPARTURE\tARRIVAL\tSTATUS")
	for _, f := range flights {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.FlightNumber, f.DepartureAirport, f.ArrivalAirport,
			f.DepartureTime.Local().Format(time.DateTime), f.ArrivalTime.Local().Format(time.DateTime), f.Status)
	}
	fmt.Fprintln(w)
	_ = w.Flush()
}
