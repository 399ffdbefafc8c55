// Copyright 2025 The Geocoder Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/geocoder/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
