package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/tesisdb"
)

// Run executes the clear-checkpoints command.
func (c *ClearCheckpointsCmd) Run(deps *Dependencies) error {
	if c.Tipo != "" && c.Epoca == "" {
		err := tesisdb.Errorf(tesisdb.EINVALID, "--tipo requires --epoca")
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}
	if !c.Force {
		err := tesisdb.Errorf(tesisdb.EINVALID, "cleared pages will be re-fetched on the next crawl; pass --force to confirm")
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}

	n, err := deps.Checkpoints.ClearCheckpoints(deps.Ctx, tesisdb.CheckpointScope{
		Epoca:     c.Epoca,
		TipoTesis: c.Tipo,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %s checkpoints\n", humanize.Comma(int64(n)))
	return nil
}
