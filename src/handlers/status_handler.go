package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"
	"github.com/username/investfolio/src/logger"
	"github.com/username/investfolio/src/utils"
)

type StatusHandler struct {
}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// HandleGetSystemStatus reports host CPU usage, memory usage and CPU
// temperature for the portal dashboard. Telemetry that cannot be read
// on this platform degrades to "N/A" rather than an error.
func (h *StatusHandler) HandleGetSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuUsage := 0.0
	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		cpuUsage = utils.RoundFloat(percents[0], 1)
	} else if err != nil {
		logger.L.Warn("Could not read CPU usage", "error", err)
	}

	memUsage := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsage = utils.RoundFloat(vm.UsedPercent, 1)
	} else {
		logger.L.Warn("Could not read memory usage", "error", err)
	}

	var cpuTemp any = "N/A"
	if temps, err := sensors.SensorsTemperatures(); err == nil {
		for _, t := range temps {
			if t.SensorKey == "cpu_thermal" || t.SensorKey == "coretemp" {
				cpuTemp = utils.RoundFloat(t.Temperature, 1)
				break
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"cpu_usage":    cpuUsage,
		"memory_usage": memUsage,
		"cpu_temp":     cpuTemp,
	})
}
