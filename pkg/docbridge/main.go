package docbridge

import (
	"context"
	"errors"
	"flag"
)

// Main is the entry point behind cmd/docbridge. It parses args, connects
// the stores and runs the sync loop until ctx is canceled. Tests call it
// directly without building the binary. A help request returns nil.
func Main(ctx context.Context, args []string) error {
	cfg, err := Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(ctx)
}
