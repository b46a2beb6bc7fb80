/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import (
	"github.com/ssargent/rollbook/cmd/rollbook/cmd"
	"github.com/ssargent/rollbook/pkg/di"
)

func main() {
	container := di.NewContainer()

	// Inject dependencies into cmd package
	cmd.SetContainer(container)

	cmd.Execute()
}
