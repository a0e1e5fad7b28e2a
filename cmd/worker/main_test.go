package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/app"
	_ "github.com/ppl-hub/practicum/internal/testing/guard"
)

func TestMainReturnsInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
	main()
}
