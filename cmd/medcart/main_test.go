package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteList(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"route:list"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	for _, want := range []string{
		"/api/auth/register",
		"/api/products/{id}/buy",
		"/api/purchases/{id}/status",
		"/api/prescriptions/pharmacy/{name}",
		"/graphql",
		"/ws/pharmacy/{name}",
		"/sse/pharmacy/{name}",
		"products.buy",
	} {
		assert.Contains(t, out.String(), want)
	}
}

func TestMigrateRejectsConflictingFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"migrate", "--rollback", "--status"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}
