// Package instance creates the Vulkan instance and the validation debug
// messenger.
package instance

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
)

const ValidationLayer = "VK_LAYER_KHRONOS_validation"

var (
	ErrValidationLayerUnavailable = errors.New("validation layer not available, install the Vulkan SDK")
	ErrMissingExtension           = errors.New("required instance extension not available")
)

type Options struct {
	AppName string
	// WindowExtensions are the surface extensions the windowing system needs.
	WindowExtensions []string
	EnableValidation bool
	Logger           *slog.Logger
}

// Instance owns the instance driver and, with validation enabled, the debug
// messenger.
type Instance struct {
	Driver core1_0.CoreInstanceDriver

	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	logger         *slog.Logger
}

func Create(global core1_0.GlobalDriver, opts Options) (*Instance, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	info := core1_0.InstanceCreateInfo{
		ApplicationName:    opts.AppName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         opts.AppName,
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_1,
	}

	available, _, err := global.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "instance: enumerate extensions")
	}
	supported := make(map[string]bool, len(available))
	for name := range available {
		logger.Debug("instance extension available", slog.String("name", name))
		supported[name] = true
	}

	names, err := EnabledExtensions(supported, opts.WindowExtensions, opts.EnableValidation)
	if err != nil {
		return nil, err
	}
	info.EnabledExtensionNames = names

	if supported[khr_portability_enumeration.ExtensionName] {
		info.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	inst := &Instance{logger: logger}

	if opts.EnableValidation {
		layers, _, err := global.AvailableLayers()
		if err != nil {
			return nil, errors.Wrap(err, "instance: enumerate layers")
		}
		if _, ok := layers[ValidationLayer]; !ok {
			return nil, errors.Wrapf(ErrValidationLayerUnavailable, "instance: layer %s", ValidationLayer)
		}
		info.EnabledLayerNames = []string{ValidationLayer}
		info.Next = inst.messengerInfo()
	}

	inst.Driver, _, err = global.CreateInstance(nil, info)
	if err != nil {
		return nil, errors.Wrap(err, "instance: create")
	}

	if opts.EnableValidation {
		inst.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(inst.Driver)
		inst.debugMessenger, _, err = inst.debugDriver.CreateDebugUtilsMessenger(nil, inst.messengerInfo())
		if err != nil {
			inst.Driver.DestroyInstance(nil)
			return nil, errors.Wrap(err, "instance: create debug messenger")
		}
	}

	return inst, nil
}

// EnabledExtensions returns the extension names to enable, failing if a
// window extension is not available.
func EnabledExtensions(available map[string]bool, window []string, validation bool) ([]string, error) {
	var names []string
	for _, ext := range window {
		if !available[ext] {
			return nil, errors.Wrapf(ErrMissingExtension, "instance: %s", ext)
		}
		names = append(names, ext)
	}

	if validation {
		names = append(names, ext_debug_utils.ExtensionName)
	}

	if available[khr_portability_enumeration.ExtensionName] {
		names = append(names, khr_portability_enumeration.ExtensionName)
	}

	return names, nil
}

func (i *Instance) messengerInfo() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityVerbose | ext_debug_utils.SeverityInfo |
			ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError,
		MessageType:  ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: i.logDebug,
	}
}

func (i *Instance) logDebug(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	i.logger.Log(context.Background(), Level(severity), data.Message, slog.String("type", TypeString(msgType)))
	return false
}

// Destroy tears down the messenger and then the instance.
func (i *Instance) Destroy() {
	if i.debugMessenger.Initialized() {
		i.debugDriver.DestroyDebugUtilsMessenger(i.debugMessenger, nil)
		i.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}
	if i.Driver != nil {
		i.Driver.DestroyInstance(nil)
		i.Driver = nil
	}
}
