package alloc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v3/core1_0"
)

var memoryTypes = []core1_0.MemoryType{
	{PropertyFlags: core1_0.MemoryPropertyDeviceLocal},
	{PropertyFlags: core1_0.MemoryPropertyHostVisible},
	{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
	{PropertyFlags: core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent},
}

func TestFindMemoryTypeFirstMatch(t *testing.T) {
	index, err := FindMemoryType(memoryTypes, 0b1111, HostVisible)
	require.NoError(t, err)
	require.Equal(t, 2, index)

	index, err = FindMemoryType(memoryTypes, 0b1111, DeviceLocal)
	require.NoError(t, err)
	require.Equal(t, 0, index)
}

func TestFindMemoryTypeRespectsFilter(t *testing.T) {
	index, err := FindMemoryType(memoryTypes, 0b1000, HostVisible)
	require.NoError(t, err)
	require.Equal(t, 3, index)

	index, err = FindMemoryType(memoryTypes, 0b1010, core1_0.MemoryPropertyHostVisible)
	require.NoError(t, err)
	require.Equal(t, 1, index)
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	_, err := FindMemoryType(memoryTypes, 0b0011, HostVisible)
	require.True(t, errors.Is(err, ErrNoMemoryType))

	_, err = FindMemoryType(memoryTypes, 0, 0)
	require.True(t, errors.Is(err, ErrNoMemoryType))

	_, err = FindMemoryType(nil, 0xffffffff, 0)
	require.True(t, errors.Is(err, ErrNoMemoryType))
}

func TestTransitionFor(t *testing.T) {
	tr, err := TransitionFor(core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	require.Equal(t, core1_0.PipelineStageTopOfPipe, tr.SrcStage)
	require.Equal(t, core1_0.PipelineStageTransfer, tr.DstStage)
	require.Equal(t, core1_0.AccessTransferWrite, tr.DstAccess)

	tr, err = TransitionFor(core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal)
	require.NoError(t, err)
	require.Equal(t, core1_0.PipelineStageFragmentShader, tr.DstStage)
	require.Equal(t, core1_0.AccessShaderRead, tr.DstAccess)

	_, err = TransitionFor(core1_0.ImageLayoutShaderReadOnlyOptimal, core1_0.ImageLayoutUndefined)
	require.Error(t, err)
}
