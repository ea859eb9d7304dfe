package main

import (
	"context"
	"fmt"
)

type ProfilesCmd struct{}

// profileLister is implemented by stores that can enumerate profiles.
type profileLister interface {
	Profiles(ctx context.Context) ([]string, error)
}

func (c *ProfilesCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := newApp(ctx, g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	lister, ok := a.store.(profileLister)
	if !ok {
		return fmt.Errorf("storage driver %q cannot list profiles", a.cfg.Storage.Driver)
	}
	names, err := lister.Profiles(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
