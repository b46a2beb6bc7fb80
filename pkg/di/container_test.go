package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rollbook/pkg/api"
	"github.com/ssargent/rollbook/pkg/storage"
)

type stubServerFactory struct{}

func (stubServerFactory) CreateServerStarter() api.ServerStarter { return stubStarter{} }

type stubStarter struct{}

func (stubStarter) StartServer(context.Context, api.Dispatcher, api.ServerConfig) error { return nil }

func TestContainer_Defaults(t *testing.T) {
	c := NewContainer()
	require.NotNil(t, c.GetBackendFactory())
	require.NotNil(t, c.GetServerFactory())

	backend, err := c.GetBackendFactory().OpenBackend(storage.Options{Kind: storage.KindFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.Contains(t, backend.Describe(), storage.DefaultFileName)
	assert.NoError(t, backend.Close())
}

func TestContainer_Overrides(t *testing.T) {
	c := NewContainer()
	c.SetServerFactory(stubServerFactory{})

	err := c.GetServerFactory().CreateServerStarter().StartServer(context.Background(), nil, api.ServerConfig{})
	assert.NoError(t, err)
}
