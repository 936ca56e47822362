package hostinfo

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Host describes the machine a sweep ran on.
type Host struct {
	CPUModel      string `json:"cpu_model" yaml:"cpu_model"`
	CPUNumLogical int    `json:"cpu_num_logical" yaml:"cpu_num_logical"`
	OS            string `json:"os" yaml:"os"`
	Arch          string `json:"arch" yaml:"arch"`
	Hostname      string `json:"hostname" yaml:"hostname"`
}

// Detect gathers host details. It never fails; unknown values fall back
// to generic descriptions.
func Detect(ctx context.Context) Host {
	hostname, _ := os.Hostname()
	return Host{
		CPUModel:      detectCPUModel(ctx),
		CPUNumLogical: runtime.NumCPU(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Hostname:      hostname,
	}
}

// LogAttrs flattens h for structured logging.
func (h Host) LogAttrs() []any {
	return []any{
		"cpu_model", h.CPUModel,
		"cpus", h.CPUNumLogical,
		"os", h.OS,
		"arch", h.Arch,
		"hostname", h.Hostname,
	}
}

func detectCPUModel(ctx context.Context) string {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.CommandContext(ctx, "sysctl", "-n", "machdep.cpu.brand_string").Output()
		if err == nil {
			return strings.TrimSpace(string(out))
		}
	case "linux":
		f, err := os.Open("/proc/cpuinfo")
		if err == nil {
			defer f.Close()
			if model := cpuModelFromCPUInfo(f); model != "" {
				return model
			}
		}
	}

	return runtime.GOARCH + " CPU"
}

func cpuModelFromCPUInfo(r io.Reader) string {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "model name") {
			if _, model, ok := strings.Cut(line, ":"); ok {
				return strings.TrimSpace(model)
			}
		}
	}

	return ""
}
