//go:build headless

package main

import (
	"errors"

	"github.com/lixenwraith/tilegrid/config"
)

func runWindow(config.Config, builder) error {
	return errors.New("window backend not built in (headless)")
}
