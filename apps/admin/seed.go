package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/edumedsolutions/edumed/core/university"
)

var errAlreadySeeded = errors.New("the store already has universities (use -force to insert anyway)")

// seedUniversities loads the sample directory into an empty store.
func (cli *commandLine) seedUniversities(force bool) error {
	ctx := context.Background()
	if !force {
		existing, err := cli.store.QueryUniversities(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errAlreadySeeded
		}
	}

	samples := university.SampleUniversities()
	for i := range samples {
		samples[i].ID = "" // assigned by the store
	}
	created, err := cli.store.CreateUniversities(ctx, samples...)
	if err != nil {
		return err
	}
	fmt.Printf("%d universities created\n", len(created))
	return nil
}
