// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/rollbook/pkg/api"     //nolint:depguard
	"github.com/ssargent/rollbook/pkg/storage" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	backendFactory storage.BackendFactory
	serverFactory  api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		backendFactory: storage.NewBackendFactory(),
		serverFactory:  api.NewServerFactory(),
	}
}

// GetBackendFactory returns the storage backend factory
func (c *Container) GetBackendFactory() storage.BackendFactory {
	return c.backendFactory
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetBackendFactory allows overriding the backend factory (for testing)
func (c *Container) SetBackendFactory(factory storage.BackendFactory) {
	c.backendFactory = factory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
