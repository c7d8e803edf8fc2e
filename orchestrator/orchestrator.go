package orchestrator

import (
	"context"
	"os"

	"github.com/juju/errors"

	"github.com/stm32sprog/stm32sprog/programmer"
	"github.com/stm32sprog/stm32sprog/sparseimage"
	"github.com/stm32sprog/stm32sprog/transport"
	"github.com/stm32sprog/stm32sprog/transport/serial"
)

// Options describes one programming run, corresponding directly to the
// CLI surface.
type Options struct {
	Device string
	Baud   int

	Erase bool
	Reset bool
	Verify bool

	// WriteFile is the RAW firmware image path, or "" to skip writing.
	WriteFile string

	Logger           programmer.Logger
	ProgressCallback programmer.ProgressCallback
}

// Validate enforces the CLI usage rules: at least one of
// Erase/Reset/WriteFile, and Verify only alongside WriteFile.
func (o Options) Validate() error {
	if !o.Erase && !o.Reset && o.WriteFile == "" {
		return &ArgumentError{Reason: "at least one of -e, -r, -w is required"}
	}
	if o.Verify && o.WriteFile == "" {
		return &ArgumentError{Reason: "-v requires -w"}
	}
	return nil
}

// Run opens the serial transport named by opts and executes the
// programming sequence against it.
func Run(ctx context.Context, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	port, err := serial.Open(opts.Device, opts.Baud)
	if err != nil {
		return errors.Annotate(err, "opening transport")
	}
	defer port.Close()

	return runSession(ctx, port, opts)
}

// runSession implements the sequence over an already-open transport, so
// it can be exercised in tests without a real serial port.
func runSession(ctx context.Context, t transport.Transport, opts Options) error {
	var sessOpts []programmer.Option
	if opts.Logger != nil {
		sessOpts = append(sessOpts, programmer.WithLogger(opts.Logger))
	}
	if opts.ProgressCallback != nil {
		sessOpts = append(sessOpts, programmer.WithProgressCallback(opts.ProgressCallback))
	}
	sess := programmer.New(t, sessOpts...)

	if err := sess.Handshake(ctx); err != nil {
		return errors.Annotate(err, "handshake")
	}
	params, err := sess.Discover(ctx)
	if err != nil {
		return errors.Annotate(err, "discover")
	}

	var img *sparseimage.SparseImage
	var firmwareSize int
	if opts.WriteFile != "" {
		data, err := os.ReadFile(opts.WriteFile)
		if err != nil {
			return &FileError{Path: opts.WriteFile, Reason: err.Error()}
		}
		firmwareSize = len(data)

		img = sparseimage.New()
		if err := img.Insert(0, data); err != nil {
			return errors.Annotate(err, "loading firmware image")
		}
		// The RAW image is offset 0; relocate it onto the device's Flash
		// base, which is naturally 4-byte aligned.
		img.Shift(int64(params.FlashBegin))
	}

	switch {
	case opts.Erase:
		if err := sess.EraseAll(ctx); err != nil {
			return errors.Annotate(err, "erase")
		}
	case img != nil:
		pages := ceilDiv(uint32(firmwareSize), params.PageSize)
		if err := sess.ErasePages(ctx, 0, pages); err != nil {
			return errors.Annotate(err, "erase")
		}
	}

	if img != nil {
		if err := sess.WriteImage(ctx, img); err != nil {
			return errors.Annotate(err, "write")
		}
		if opts.Verify {
			if err := sess.VerifyImage(ctx, img); err != nil {
				return errors.Annotate(err, "verify")
			}
		}
	}

	if opts.Reset {
		if err := sess.Go(ctx, uint32(params.FlashBegin)); err != nil {
			return errors.Annotate(err, "go")
		}
	}

	if opts.ProgressCallback != nil {
		opts.ProgressCallback(programmer.Progress{Phase: programmer.PhaseComplete})
	}
	return nil
}

func ceilDiv(size, pageSize uint32) uint32 {
	if size == 0 {
		return 0
	}
	return (size + pageSize - 1) / pageSize
}
