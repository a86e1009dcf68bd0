package ui

import (
	"go.bug.st/serial"

	gpsapp "github.com/skobkin/gpsreader/internal/app"
)

func BuildRuntimeDependencies(rt *gpsapp.Runtime, launch LaunchOptions, onQuit func()) RuntimeDependencies {
	dep := RuntimeDependencies{
		Launch: launch,
		Actions: ActionDependencies{
			OnQuit: onQuit,
		},
		Platform: PlatformDependencies{
			ListSerialPorts: serial.GetPortsList,
		},
	}

	if rt == nil {
		return dep
	}

	dep.Data = DataDependencies{
		Bus:                  rt.Bus,
		CurrentConfig:        rt.CurrentConfig,
		CurrentConnStatus:    rt.CurrentConnStatus,
		CurrentQuality:       rt.CurrentQuality,
		CurrentAuthorization: rt.CurrentAuthorization,
	}
	dep.Actions.OnSave = rt.SaveAndApplyConfig

	return dep
}
