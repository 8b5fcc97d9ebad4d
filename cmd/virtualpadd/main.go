package main

import (
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/virtualpad/server/internal/admin"
	"github.com/virtualpad/server/internal/broadcast"
	"github.com/virtualpad/server/internal/config"
	"github.com/virtualpad/server/internal/device"
	"github.com/virtualpad/server/internal/pad"
	"github.com/virtualpad/server/internal/server"
	"github.com/virtualpad/server/internal/supervisor"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (built-in defaults when empty)")
	padPort := flag.Int("pad-port", 0, "Override pad server port")
	adminSocket := flag.String("admin-socket", "", "Override admin socket path")
	pidFile := flag.String("pid-file", "", "Override pid file path (empty string in config disables the guard)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *padPort > 0 {
		cfg.Server.PadPort = *padPort
	}
	if *adminSocket != "" {
		cfg.Server.AdminSocket = *adminSocket
	}
	if *pidFile != "" {
		cfg.Server.PIDFile = *pidFile
	}

	var pidLock *supervisor.PIDFile
	if cfg.Server.PIDFile != "" {
		lock, err := supervisor.Acquire(cfg.Server.PIDFile)
		if err != nil {
			log.Fatalf("Failed to acquire pid file: %v", err)
		}
		pidLock = lock
	}

	hub := broadcast.NewHub()

	// The OS input backend is injected here; the null factory accepts
	// and discards events.
	registry := pad.New(device.NullFactory, cfg.Device.Name, hub)

	padAddr := addr(cfg.Server.Host, cfg.Server.PadPort)
	svc := server.New(registry, padAddr, cfg.Session.Keepalive.Std(), cfg.Session.AuthTimeout.Std())
	if err := svc.Start(); err != nil {
		log.Fatalf("Failed to start pad server: %v", err)
	}

	channel := admin.NewChannel(cfg.Server.AdminSocket, registry, svc)
	if err := channel.Start(); err != nil {
		log.Fatalf("Failed to start admin channel: %v", err)
	}

	mux := http.NewServeMux()
	hub.SetupRoutes(mux)
	go func() {
		if err := broadcast.ListenAndServe(cfg.Server.Host, cfg.Server.BroadcastPort, mux); err != nil {
			log.Fatalf("Broadcast server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	svc.Stop()
	channel.Stop()
	if pidLock != nil {
		pidLock.Release()
	}
}

func addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
