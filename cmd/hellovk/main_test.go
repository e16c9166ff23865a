package main

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/hellovk/internal/assets"
)

func TestExplainMissingAssets(t *testing.T) {
	_, err := assets.NewProvider(fstest.MapFS{}).LoadBinary("shaders/shader.vert.spv")
	require.Error(t, err)

	explained := explainMissingAssets(err, "assets")
	require.ErrorIs(t, explained, fs.ErrNotExist)
	require.Contains(t, explained.Error(), "go generate ./cmd/hellovk")
	require.Contains(t, explained.Error(), "shaders/shader.vert.spv")
}

func TestExplainMissingAssetsLeavesOtherErrors(t *testing.T) {
	lost := errors.New("device lost")
	require.Same(t, lost, explainMissingAssets(lost, "assets"))
}
