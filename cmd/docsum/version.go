package main

import (
	"context"
	"fmt"

	"github.com/a-h/docsum"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(docsum.Version)
	return nil
}
