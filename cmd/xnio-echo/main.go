// Command xnio-echo runs a TCP echo server on the configured xnio provider.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/unbreakablehf/xnio/bootstrap"
	"github.com/unbreakablehf/xnio/channels"
	"github.com/unbreakablehf/xnio/config"
	"github.com/unbreakablehf/xnio/executor"
	"github.com/unbreakablehf/xnio/logger"
	"github.com/unbreakablehf/xnio/provider"

	_ "github.com/unbreakablehf/xnio/nio"
)

type echoConfig struct {
	config.Config `yaml:",inline" mapstructure:",squash"`
	Listen        string `yaml:"listen" mapstructure:"listen"`
}

func main() {
	listen := flag.String("listen", "", "Address to listen on (overrides config)")
	flag.Parse()

	var cfg echoConfig
	if err := config.LoadConfig("xnio-echo", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if cfg.Listen == "" {
		cfg.Listen = "127.0.0.1:7000"
	}
	bind, err := net.ResolveTCPAddr("tcp", cfg.Listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid listen address %q: %v\n", cfg.Listen, err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp("xnio-echo", &cfg,
		bootstrap.WithMiddleware(provider.WithLogging(logger.Get("provider"))))
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}

	if _, err := app.Serve("echo-tcp", provider.KindTCPServer, openEcho(app.Logger, bind)); err != nil {
		fmt.Fprintf(os.Stderr, "register server: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		app.Logger.Error("xnio-echo exited", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}

// openEcho binds the echo server. Each connection copies on its own
// goroutine so that long-lived clients never hold a worker of the
// provider's shared pool.
func openEcho(log *logger.Logger, bind ...net.Addr) bootstrap.OpenFunc {
	return func(ctx context.Context, p provider.Provider) (channels.BoundServer, error) {
		f, err := p.CreateTCPServer(executor.Goroutine, channels.Shared[channels.TCPChannel](echoHandler(log)), bind...)
		if err != nil {
			return nil, err
		}
		return f.Create(ctx)
	}
}

func echoHandler(log *logger.Logger) channels.Handler[channels.TCPChannel] {
	return channels.HandlerFuncs[channels.TCPChannel]{
		Opened: func(ch channels.TCPChannel) {
			n, err := io.Copy(ch, ch)
			if err != nil {
				log.Debug("echo stopped", logger.ErrorFields("copy", err))
			}
			log.Debug("echo finished", map[string]interface{}{
				"remote": ch.RemoteAddr().String(),
				"bytes":  n,
			})
			_ = ch.Close()
		},
	}
}
