// Command stm32sprog is a one-shot programmer for STM32 microcontrollers,
// driving the AN3155 UART ROM bootloader to erase, write, verify and
// jump to user code.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/stm32sprog/stm32sprog/orchestrator"
	"github.com/stm32sprog/stm32sprog/programmer"
)

// glogLogger adapts glog to the programmer.Logger interface.
type glogLogger struct{}

func (glogLogger) Debug(msg string, kv ...interface{}) { glog.V(1).Infof("%s %v", msg, kv) }
func (glogLogger) Info(msg string, kv ...interface{})  { glog.Infof("%s %v", msg, kv) }
func (glogLogger) Error(msg string, kv ...interface{}) { glog.Errorf("%s %v", msg, kv) }

func main() {
	// glog's init() registers its own flags (including -v, for its log
	// verbosity level) on flag.CommandLine. Our -v means "verify", so
	// the tool's flags live on a private FlagSet instead of colliding
	// with glog's on the default one.
	fs := flag.NewFlagSet("stm32sprog", flag.ExitOnError)
	baud := fs.Int("b", 115200, "serial baud rate")
	device := fs.String("d", "/dev/ttyUSB0", "serial device path")
	erase := fs.Bool("e", false, "erase the device")
	reset := fs.Bool("r", false, "jump to user code after programming")
	verify := fs.Bool("v", false, "verify after write (requires -w)")
	writeFile := fs.String("w", "", "RAW firmware file to write")
	fs.Parse(os.Args[1:])
	defer glog.Flush()

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "stm32sprog: unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		os.Exit(1)
	}

	opts := orchestrator.Options{
		Device:    *device,
		Baud:      *baud,
		Erase:     *erase,
		Reset:     *reset,
		Verify:    *verify,
		WriteFile: *writeFile,
		Logger:    glogLogger{},
		ProgressCallback: func(p programmer.Progress) {
			if p.TotalBytes > 0 {
				glog.Infof("%s: %d/%d bytes", p.Phase, p.BytesDone, p.TotalBytes)
			}
		},
	}

	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "stm32sprog:", err)
		fs.Usage()
		os.Exit(1)
	}

	if err := orchestrator.Run(context.Background(), opts); err != nil {
		fmt.Fprintln(os.Stderr, "stm32sprog:", err)
		os.Exit(1)
	}
}
