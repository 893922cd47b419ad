// Command switch runs the NPSB message switch: it accepts acquirer and
// issuer TCP connections, handles network management locally, and
// forwards financial requests and their matched responses between the
// two sides.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"npsb-switch/internal/admin"
	"npsb-switch/internal/config"
	"npsb-switch/internal/iso8583"
	"npsb-switch/internal/logging"
	"npsb-switch/internal/switchcore"
	"npsb-switch/internal/trigger"
)

func main() {
	configPath := flag.String("config", "npsb-switch.yaml", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	log := logging.MustNew(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, FilePath: cfg.LogFile})

	registry := switchcore.NewRegistry(cfg.Acquirers, cfg.Issuers)
	correlation := switchcore.NewCorrelationTable()
	sw := switchcore.NewSwitch(registry, correlation, iso8583.DefaultMode, log, switchcore.SampleConfig{
		PAN:    cfg.SamplePAN,
		Amount: cfg.SampleAmount,
		RRN:    cfg.SampleRRN,
		STAN:   cfg.SampleSTAN,
	})

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		log.WithError(err).Fatal("failed to bind listener")
	}
	log.WithField("addr", cfg.ListenAddr()).Info("switch listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sw.Serve(ctx, ln); err != nil {
			log.WithError(err).Error("accept loop stopped")
		}
	}()

	adminSrv := admin.Serve(cfg.AdminAddr, &admin.Server{
		Started:     time.Now(),
		SwitchAddr:  cfg.ListenAddr(),
		Mode:        iso8583.DefaultMode,
		Registry:    registry,
		Correlation: correlation,
		Log:         log,
	})

	go func() {
		err := trigger.Watch(ctx, cfg.TriggerPath, log, func() {
			if err := sw.InjectSample(); err != nil {
				log.WithError(err).Warn("sample injection failed")
			}
		})
		if err != nil {
			log.WithError(err).Warn("trigger watcher stopped")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown signal received")

	cancel()
	_ = ln.Close()
	for _, c := range registry.AllConnections() {
		_ = c.Conn.Close()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	_ = adminSrv.Shutdown(shutdownCtx)

	log.Info("switch stopped")
}
