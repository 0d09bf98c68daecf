// Command renderbridge-server runs the rendering bridge: it listens for
// client connections, translates the wire protocol into device.RenderDevice
// calls against a loaded device.Library, and streams rendered frames back.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumenforge/renderbridge"
	"github.com/lumenforge/renderbridge/device"
	"github.com/lumenforge/renderbridge/device/stub"
	"github.com/lumenforge/renderbridge/version"
	"github.com/lumenforge/renderbridge/wire"
	"github.com/lumenforge/renderbridge/wsgateway"
)

var (
	flagPort    uint16
	flagLibrary string
	flagWSAddr  string
	flagVerbose bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "renderbridge-server",
		Short:   "Forward a rendering session to a locally loaded render device",
		Version: version.Full(),
		RunE:    runServer,
	}

	flags := cmd.Flags()
	flags.Uint16VarP(&flagPort, "port", "p", wire.DefaultPort, "TCP port to listen on")
	flags.StringVarP(&flagLibrary, "library", "l", "stub", "render device library to load (only \"stub\" is built in)")
	flags.StringVar(&flagWSAddr, "ws-listen", "", "if set, also serve a WebSocket gateway at this address (e.g. :8080)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log device status callbacks at all severities, not just warnings and above")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)

	onStatus := func(sev wire.Severity, message string) {
		if !flagVerbose && (sev == wire.SeverityInfo || sev == wire.SeverityDebug || sev == wire.SeverityPerformance) {
			return
		}
		logger.Printf("device: [%s] %s", sev, message)
	}

	lib, err := loadLibrary(flagLibrary, onStatus)
	if err != nil {
		return fmt.Errorf("renderbridge-server: %w", err)
	}
	defer lib.Close()

	addr := fmt.Sprintf(":%d", flagPort)
	server := renderbridge.New(renderbridge.Config{
		Listener: addr,
		Library:  lib,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- server.Serve(ctx) }()

	if flagWSAddr != "" {
		// The gateway dials the bridge's own TCP listener like any other
		// client would; it has no privileged path into the Server.
		bridgeAddr := addr
		go func() {
			errCh <- wsgateway.Serve(flagWSAddr, func() (net.Conn, error) {
				return net.Dial("tcp", bridgeAddr)
			})
		}()
	}

	return <-errCh
}

// loadLibrary resolves a named render device library. The bridge never
// hardcodes which library backs it; "stub" is the only built-in name,
// since this repository carries no real rendering backend binding. A real
// deployment's main package would register additional names here, or load
// one by build tag.
func loadLibrary(name string, onStatus device.StatusFunc) (device.Library, error) {
	switch name {
	case "stub", "":
		return stub.NewLibrary(onStatus), nil
	default:
		return nil, fmt.Errorf("unknown render device library %q", name)
	}
}
